package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jekabolt/shop-metrics/internal/dependency"
	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/shopspring/decimal"
)

type shopStore struct {
	*MYSQLStore
}

// Shops returns an object implementing Shops interface
func (ms *MYSQLStore) Shops() dependency.Shops {
	return &shopStore{
		MYSQLStore: ms,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (ms *shopStore) AddShop(ctx context.Context, s *entity.ShopInsert) (*entity.Shop, error) {
	pct := entity.DefaultProfitSharePercentage
	if s.ProfitSharePercentage.Valid {
		pct = s.ProfitSharePercentage.Decimal
	}
	query := `
	INSERT INTO shop (name, platform, region, profit_share_percentage, sheet_id, sheet_name)
	VALUES (:name, :platform, :region, :profitSharePercentage, :sheetId, :sheetName)`

	id, err := ExecNamedLastId(ctx, ms.DB(), query, map[string]any{
		"name":                  s.Name,
		"platform":              s.Platform,
		"region":                s.Region,
		"profitSharePercentage": pct,
		"sheetId":               nullString(s.SheetId),
		"sheetName":             nullString(s.SheetName),
	})
	if err != nil {
		return nil, fmt.Errorf("can't add shop: %w", err)
	}
	return ms.GetShopById(ctx, id)
}

func (ms *shopStore) GetShops(ctx context.Context) ([]entity.Shop, error) {
	shops := []entity.Shop{}
	query := `SELECT * FROM shop ORDER BY id`
	if err := ms.DB().SelectContext(ctx, &shops, query); err != nil {
		return nil, fmt.Errorf("can't get shops: %w", err)
	}
	return shops, nil
}

func (ms *shopStore) GetShopById(ctx context.Context, id int) (*entity.Shop, error) {
	query := `SELECT * FROM shop WHERE id = :id`
	shop, err := QueryNamedOne[entity.Shop](ctx, ms.DB(), query, map[string]any{
		"id": id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", gerr.ShopNotFound, id)
		}
		return nil, fmt.Errorf("can't get shop by id: %w", err)
	}
	return &shop, nil
}

// updateShop executes query and reloads the shop in the same transaction.
func (ms *shopStore) updateShop(ctx context.Context, id int, query string, params map[string]any) (*entity.Shop, error) {
	var shop *entity.Shop
	err := ms.Tx(ctx, func(ctx context.Context, s *MYSQLStore) error {
		ss := &shopStore{MYSQLStore: s}
		if _, err := ss.GetShopById(ctx, id); err != nil {
			return err
		}
		params["id"] = id
		if err := ExecNamed(ctx, s.DB(), query, params); err != nil {
			return fmt.Errorf("can't update shop %d: %w", id, err)
		}
		var err error
		shop, err = ss.GetShopById(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return shop, nil
}

func (ms *shopStore) UpdateProfitShare(ctx context.Context, id int, pct decimal.Decimal) (*entity.Shop, error) {
	query := `UPDATE shop SET profit_share_percentage = :pct WHERE id = :id`
	return ms.updateShop(ctx, id, query, map[string]any{
		"pct": pct,
	})
}

func (ms *shopStore) UpdateSheetSource(ctx context.Context, id int, sheetId, sheetName string) (*entity.Shop, error) {
	if sheetId == "" {
		sheetName = ""
	}
	query := `UPDATE shop SET sheet_id = :sheetId, sheet_name = :sheetName WHERE id = :id`
	return ms.updateShop(ctx, id, query, map[string]any{
		"sheetId":   nullString(sheetId),
		"sheetName": nullString(sheetName),
	})
}

// DeleteShop relies on ON DELETE CASCADE for metric records and sync status.
func (ms *shopStore) DeleteShop(ctx context.Context, id int) error {
	res, err := ms.DB().ExecContext(ctx, `DELETE FROM shop WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete shop %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", gerr.ShopNotFound, id)
	}
	return nil
}
