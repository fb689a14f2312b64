package bunt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/tidwall/buntdb"
	"github.com/tidwall/gjson"
)

type shopDoc struct {
	Id                    int             `json:"id"`
	Name                  string          `json:"name"`
	Platform              string          `json:"platform"`
	Region                string          `json:"region"`
	ProfitSharePercentage decimal.Decimal `json:"profit_share_percentage"`
	SheetId               string          `json:"sheet_id,omitempty"`
	SheetName             string          `json:"sheet_name,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

func (d *shopDoc) entity() entity.Shop {
	return entity.Shop{
		Id:                    d.Id,
		Name:                  d.Name,
		Platform:              d.Platform,
		Region:                d.Region,
		ProfitSharePercentage: d.ProfitSharePercentage,
		SheetId:               sql.NullString{String: d.SheetId, Valid: d.SheetId != ""},
		SheetName:             sql.NullString{String: d.SheetName, Valid: d.SheetName != ""},
		CreatedAt:             d.CreatedAt,
	}
}

func getShop(tx *buntdb.Tx, id int) (*shopDoc, error) {
	v, err := tx.Get(shopKey(id))
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", gerr.ShopNotFound, id)
		}
		return nil, fmt.Errorf("can't get shop %d: %w", id, err)
	}
	d := &shopDoc{}
	if err := json.Unmarshal([]byte(v), d); err != nil {
		return nil, fmt.Errorf("can't decode shop %d: %w", id, err)
	}
	return d, nil
}

func putShop(tx *buntdb.Tx, d *shopDoc) error {
	bs, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("can't encode shop %d: %w", d.Id, err)
	}
	_, _, err = tx.Set(shopKey(d.Id), string(bs), nil)
	return err
}

func (b *BuntDB) AddShop(ctx context.Context, s *entity.ShopInsert) (*entity.Shop, error) {
	pct := entity.DefaultProfitSharePercentage
	if s.ProfitSharePercentage.Valid {
		pct = s.ProfitSharePercentage.Decimal
	}
	d := &shopDoc{
		Name:                  s.Name,
		Platform:              s.Platform,
		Region:                s.Region,
		ProfitSharePercentage: pct,
		SheetId:               s.SheetId,
		SheetName:             s.SheetName,
		CreatedAt:             b.now().UTC(),
	}
	err := b.db.Update(func(tx *buntdb.Tx) error {
		var err error
		if d.Id, err = b.nextShopId(tx); err != nil {
			return err
		}
		return putShop(tx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("can't add shop: %w", err)
	}
	shop := d.entity()
	return &shop, nil
}

func (b *BuntDB) GetShops(ctx context.Context) ([]entity.Shop, error) {
	shops := []entity.Shop{}
	var decodeErr error
	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(shopPrefix+"*", func(_, v string) bool {
			d := shopDoc{}
			if decodeErr = json.Unmarshal([]byte(v), &d); decodeErr != nil {
				return false
			}
			shops = append(shops, d.entity())
			return true
		})
	})
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		return nil, fmt.Errorf("can't get shops: %w", err)
	}
	return shops, nil
}

func (b *BuntDB) GetShopById(ctx context.Context, id int) (*entity.Shop, error) {
	var d *shopDoc
	err := b.db.View(func(tx *buntdb.Tx) error {
		var err error
		d, err = getShop(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	shop := d.entity()
	return &shop, nil
}

// updateShop applies fn to the stored shop inside a single write transaction.
func (b *BuntDB) updateShop(id int, fn func(d *shopDoc)) (*entity.Shop, error) {
	var d *shopDoc
	err := b.db.Update(func(tx *buntdb.Tx) error {
		var err error
		d, err = getShop(tx, id)
		if err != nil {
			return err
		}
		fn(d)
		return putShop(tx, d)
	})
	if err != nil {
		return nil, err
	}
	shop := d.entity()
	return &shop, nil
}

func (b *BuntDB) UpdateProfitShare(ctx context.Context, id int, pct decimal.Decimal) (*entity.Shop, error) {
	return b.updateShop(id, func(d *shopDoc) {
		d.ProfitSharePercentage = pct
	})
}

func (b *BuntDB) UpdateSheetSource(ctx context.Context, id int, sheetId, sheetName string) (*entity.Shop, error) {
	return b.updateShop(id, func(d *shopDoc) {
		d.SheetId = sheetId
		d.SheetName = sheetName
		if sheetId == "" {
			d.SheetName = ""
		}
	})
}

func (b *BuntDB) DeleteShop(ctx context.Context, id int) error {
	err := b.db.Update(func(tx *buntdb.Tx) error {
		if _, err := getShop(tx, id); err != nil {
			return err
		}

		var keys []string
		err := tx.AscendKeys(metricPrefix+"*", func(k, v string) bool {
			if int(gjson.Get(v, "shop_id").Int()) == id {
				keys = append(keys, k)
			}
			return true
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if _, err := tx.Delete(k); err != nil {
				return err
			}
		}
		if _, err := tx.Delete(syncKey(id)); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		_, err = tx.Delete(shopKey(id))
		return err
	})
	if err != nil {
		if errors.Is(err, gerr.ShopNotFound) {
			return err
		}
		return fmt.Errorf("can't delete shop %d: %w", id, err)
	}
	return nil
}
