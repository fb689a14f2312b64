package bunt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/tidwall/buntdb"
	"github.com/tidwall/gjson"
)

type metricDoc struct {
	Id            int             `json:"id"`
	ShopId        int             `json:"shop_id"`
	Date          string          `json:"date"`
	Revenue       decimal.Decimal `json:"revenue"`
	Orders        int             `json:"orders"`
	TotalPurchase decimal.Decimal `json:"total_purchase"`
	Profit        decimal.Decimal `json:"profit"`
	ROI           decimal.Decimal `json:"roi"`
}

func newMetricDoc(id int, r *entity.MetricRecordInsert) *metricDoc {
	return &metricDoc{
		Id:            id,
		ShopId:        r.ShopId,
		Date:          r.Date.Format(entity.DateLayout),
		Revenue:       r.Revenue,
		Orders:        r.Orders,
		TotalPurchase: r.TotalPurchase,
		Profit:        r.Profit,
		ROI:           r.ROI,
	}
}

func (d *metricDoc) entity() (entity.MetricRecord, error) {
	date, err := time.Parse(entity.DateLayout, d.Date)
	if err != nil {
		return entity.MetricRecord{}, fmt.Errorf("bad date in metric record %d: %w", d.Id, err)
	}
	return entity.MetricRecord{
		Id: d.Id,
		MetricRecordInsert: entity.MetricRecordInsert{
			ShopId:        d.ShopId,
			Date:          date,
			Revenue:       d.Revenue,
			Orders:        d.Orders,
			TotalPurchase: d.TotalPurchase,
			Profit:        d.Profit,
			ROI:           d.ROI,
		},
	}, nil
}

func datePivot(t time.Time) string {
	return fmt.Sprintf(`{"date":%q}`, entity.DateOf(t).Format(entity.DateLayout))
}

func putMetrics(tx *buntdb.Tx, firstId int, rs []entity.MetricRecordInsert) error {
	for i := range rs {
		d := newMetricDoc(firstId+i, &rs[i])
		bs, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("can't encode metric record: %w", err)
		}
		if _, _, err := tx.Set(metricKey(d.Id), string(bs), nil); err != nil {
			return err
		}
	}
	return nil
}

// AddMetricRecord stores the record. The shop is not checked, callers do that.
func (b *BuntDB) AddMetricRecord(ctx context.Context, r *entity.MetricRecordInsert) (*entity.MetricRecord, error) {
	var id int
	err := b.db.Update(func(tx *buntdb.Tx) error {
		var err error
		if id, err = b.nextMetricIds(tx, 1); err != nil {
			return err
		}
		return putMetrics(tx, id, []entity.MetricRecordInsert{*r})
	})
	if err != nil {
		return nil, fmt.Errorf("can't add metric record: %w", err)
	}
	return &entity.MetricRecord{
		Id:                 id,
		MetricRecordInsert: *r,
	}, nil
}

func (b *BuntDB) AddMetricRecords(ctx context.Context, rs []entity.MetricRecordInsert) error {
	if len(rs) == 0 {
		return nil
	}
	err := b.db.Update(func(tx *buntdb.Tx) error {
		first, err := b.nextMetricIds(tx, len(rs))
		if err != nil {
			return err
		}
		return putMetrics(tx, first, rs)
	})
	if err != nil {
		return fmt.Errorf("can't add metric records: %w", err)
	}
	return nil
}

func (b *BuntDB) GetMetricRecords(ctx context.Context, f entity.MetricRecordFilter) ([]entity.MetricRecord, error) {
	records := []entity.MetricRecord{}
	var decodeErr error
	iter := func(_, v string) bool {
		if f.ShopId != 0 && int(gjson.Get(v, "shop_id").Int()) != f.ShopId {
			return true
		}
		d := metricDoc{}
		if decodeErr = json.Unmarshal([]byte(v), &d); decodeErr != nil {
			return false
		}
		r, err := d.entity()
		if err != nil {
			decodeErr = err
			return false
		}
		records = append(records, r)
		return true
	}

	err := b.db.View(func(tx *buntdb.Tx) error {
		switch {
		case !f.From.IsZero() && !f.To.IsZero():
			return tx.AscendRange(idxMetricDate, datePivot(f.From), datePivot(f.To.AddDate(0, 0, 1)), iter)
		case !f.From.IsZero():
			return tx.AscendGreaterOrEqual(idxMetricDate, datePivot(f.From), iter)
		case !f.To.IsZero():
			return tx.AscendLessThan(idxMetricDate, datePivot(f.To.AddDate(0, 0, 1)), iter)
		default:
			return tx.Ascend(idxMetricDate, iter)
		}
	})
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		return nil, fmt.Errorf("can't get metric records: %w", err)
	}
	return records, nil
}
