package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/jekabolt/shop-metrics/internal/form"
	"github.com/jekabolt/shop-metrics/internal/instrument"
	"github.com/shopspring/decimal"
)

func (s *Service) ListShops(ctx context.Context) ([]entity.Shop, error) {
	return s.repo.Shops().GetShops(ctx)
}

func (s *Service) GetShop(ctx context.Context, id int) (*entity.Shop, error) {
	return s.repo.Shops().GetShopById(ctx, id)
}

// CreateShop adds a shop. Without an explicit share the default of 50% applies.
func (s *Service) CreateShop(ctx context.Context, in *entity.ShopInsert) (*entity.Shop, error) {
	if in.ProfitSharePercentage.Valid {
		if err := form.ValidatePercentage(in.ProfitSharePercentage.Decimal); err != nil {
			return nil, fmt.Errorf("%w: got %s", gerr.InvalidPercentage, in.ProfitSharePercentage.Decimal)
		}
	}
	shop, err := s.repo.Shops().AddShop(ctx, in)
	if err != nil {
		return nil, err
	}
	slog.Default().InfoContext(ctx, "shop created",
		slog.Int("shop_id", shop.Id),
		slog.String("name", shop.Name))
	return shop, nil
}

// UpdateProfitShare sets the shop's share. Reports computed afterwards use the
// new value for every period, including past ones.
func (s *Service) UpdateProfitShare(ctx context.Context, id int, pct decimal.Decimal) (*entity.Shop, error) {
	if err := form.ValidatePercentage(pct); err != nil {
		return nil, fmt.Errorf("%w: got %s", gerr.InvalidPercentage, pct)
	}
	return s.repo.Shops().UpdateProfitShare(ctx, id, pct)
}

func (s *Service) UpdateSheetSource(ctx context.Context, id int, sheetId, sheetName string) (*entity.Shop, error) {
	return s.repo.Shops().UpdateSheetSource(ctx, id, sheetId, sheetName)
}

// DeleteShop removes the shop with its metric records and sync status.
func (s *Service) DeleteShop(ctx context.Context, id int) error {
	if err := s.repo.Shops().DeleteShop(ctx, id); err != nil {
		return err
	}
	slog.Default().InfoContext(ctx, "shop deleted", slog.Int("shop_id", id))
	return nil
}

// AddMetricRecord stores one day of figures for an existing shop.
func (s *Service) AddMetricRecord(ctx context.Context, r *entity.MetricRecordInsert) (*entity.MetricRecord, error) {
	if r.Revenue.IsNegative() || r.TotalPurchase.IsNegative() || r.Orders < 0 {
		return nil, gerr.NegativeAmount
	}
	if _, err := s.repo.Shops().GetShopById(ctx, r.ShopId); err != nil {
		return nil, err
	}
	r.Date = entity.DateOf(r.Date)
	rec, err := s.repo.Metrics().AddMetricRecord(ctx, r)
	if err != nil {
		return nil, err
	}
	instrument.MetricRecordsIngested.Inc()
	return rec, nil
}
