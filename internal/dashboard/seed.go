package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/shopspring/decimal"
)

type demoShop struct {
	name     string
	platform string
	region   string
	share    int64
}

type demoRecord struct {
	shop     int // index into demoShops
	daysAgo  int
	revenue  string
	orders   int
	purchase string
	profit   string
	roi      string
}

var (
	demoShops = []demoShop{
		{"Home Expo", "TikTok", "USA", 40},
		{"Deal Hoper", "Instagram", "Canada", 50},
		{"Randawoo TTS", "Facebook", "UK", 50},
		{"Marvikarts - TTS", "TikTok", "Australia", 50},
	}
	demoRecords = []demoRecord{
		{0, 0, "344.13", 16, "206.48", "137.65", "66.67"},
		{0, 1, "385.02", 16, "231.01", "154.01", "66.67"},
		{1, 0, "289.45", 12, "173.67", "115.78", "66.67"},
		{2, 0, "425.65", 18, "255.39", "170.26", "66.67"},
		{3, 0, "265.22", 10, "159.13", "106.09", "66.67"},
	}
)

// Seed fills an empty repository with four demo shops and a few days of records.
// It does nothing when any shop already exists.
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.repo.Shops().GetShops(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Default().InfoContext(ctx, "demo seed skipped, shops exist",
			slog.Int("shops", len(existing)))
		return nil
	}

	ids := make([]int, len(demoShops))
	for i, d := range demoShops {
		shop, err := s.repo.Shops().AddShop(ctx, &entity.ShopInsert{
			Name:                  d.name,
			Platform:              d.platform,
			Region:                d.region,
			ProfitSharePercentage: decimal.NewNullDecimal(decimal.NewFromInt(d.share)),
		})
		if err != nil {
			return fmt.Errorf("can't seed shop %s: %w", d.name, err)
		}
		ids[i] = shop.Id
	}

	today := s.resolver.Today()
	rs := make([]entity.MetricRecordInsert, 0, len(demoRecords))
	for _, d := range demoRecords {
		rs = append(rs, entity.MetricRecordInsert{
			ShopId:        ids[d.shop],
			Date:          today.AddDate(0, 0, -d.daysAgo),
			Revenue:       decimal.RequireFromString(d.revenue),
			Orders:        d.orders,
			TotalPurchase: decimal.RequireFromString(d.purchase),
			Profit:        decimal.RequireFromString(d.profit),
			ROI:           decimal.RequireFromString(d.roi),
		})
	}
	if err := s.repo.Metrics().AddMetricRecords(ctx, rs); err != nil {
		return fmt.Errorf("can't seed metric records: %w", err)
	}
	slog.Default().InfoContext(ctx, "demo data seeded",
		slog.Int("shops", len(ids)),
		slog.Int("metric_records", len(rs)))
	return nil
}
