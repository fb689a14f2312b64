package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jekabolt/shop-metrics/internal/dependency"
	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
)

type metricStore struct {
	*MYSQLStore
}

// Metrics returns an object implementing Metrics interface
func (ms *MYSQLStore) Metrics() dependency.Metrics {
	return &metricStore{
		MYSQLStore: ms,
	}
}

func metricRow(r *entity.MetricRecordInsert) map[string]any {
	return map[string]any{
		"shop_id":        r.ShopId,
		"date":           entity.DateOf(r.Date),
		"revenue":        r.Revenue,
		"orders":         r.Orders,
		"total_purchase": r.TotalPurchase,
		"profit":         r.Profit,
		"roi":            r.ROI,
	}
}

func (ms *metricStore) AddMetricRecord(ctx context.Context, r *entity.MetricRecordInsert) (*entity.MetricRecord, error) {
	query := `
	INSERT INTO metric_record (shop_id, date, revenue, orders, total_purchase, profit, roi)
	VALUES (:shop_id, :date, :revenue, :orders, :total_purchase, :profit, :roi)`

	id, err := ExecNamedLastId(ctx, ms.DB(), query, metricRow(r))
	if err != nil {
		if ms.IsErrNoReferencedRow(err) {
			return nil, fmt.Errorf("%w: id %d", gerr.ShopNotFound, r.ShopId)
		}
		return nil, fmt.Errorf("can't add metric record: %w", err)
	}
	rec := &entity.MetricRecord{Id: id, MetricRecordInsert: *r}
	rec.Date = entity.DateOf(r.Date)
	return rec, nil
}

func (ms *metricStore) AddMetricRecords(ctx context.Context, rs []entity.MetricRecordInsert) error {
	rows := make([]map[string]any, 0, len(rs))
	for i := range rs {
		rows = append(rows, metricRow(&rs[i]))
	}
	if err := BulkInsert(ctx, ms.DB(), "metric_record", rows); err != nil {
		if ms.IsErrNoReferencedRow(err) {
			return fmt.Errorf("%w: %v", gerr.ShopNotFound, err)
		}
		return fmt.Errorf("can't add metric records: %w", err)
	}
	return nil
}

func (ms *metricStore) GetMetricRecords(ctx context.Context, f entity.MetricRecordFilter) ([]entity.MetricRecord, error) {
	var where []string
	params := map[string]any{}
	if f.ShopId != 0 {
		where = append(where, "shop_id = :shopId")
		params["shopId"] = f.ShopId
	}
	if !f.From.IsZero() {
		where = append(where, "date >= :from")
		params["from"] = entity.DateOf(f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "date <= :to")
		params["to"] = entity.DateOf(f.To)
	}

	query := `SELECT * FROM metric_record`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date, id`

	records, err := QueryListNamed[entity.MetricRecord](ctx, ms.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("can't get metric records: %w", err)
	}
	if records == nil {
		records = []entity.MetricRecord{}
	}
	return records, nil
}
