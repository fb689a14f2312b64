package bunt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/tidwall/buntdb"
)

type syncDoc struct {
	ShopId        int       `json:"shop_id"`
	LastSyncDate  string    `json:"last_sync_date,omitempty"`
	Status        string    `json:"status"`
	RecordsSynced int       `json:"records_synced"`
	ErrorMsg      string    `json:"error_msg,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (d *syncDoc) entity() (*entity.SheetSyncStatus, error) {
	s := &entity.SheetSyncStatus{
		ShopId:        d.ShopId,
		Status:        d.Status,
		RecordsSynced: d.RecordsSynced,
		ErrorMsg:      d.ErrorMsg,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.LastSyncDate != "" {
		t, err := time.Parse(entity.DateLayout, d.LastSyncDate)
		if err != nil {
			return nil, fmt.Errorf("bad last sync date for shop %d: %w", d.ShopId, err)
		}
		s.LastSyncDate = sql.NullTime{Time: t, Valid: true}
	}
	return s, nil
}

func putSync(tx *buntdb.Tx, s *entity.SheetSyncStatus, now time.Time) error {
	d := syncDoc{
		ShopId:        s.ShopId,
		Status:        s.Status,
		RecordsSynced: s.RecordsSynced,
		ErrorMsg:      s.ErrorMsg,
		UpdatedAt:     now,
	}
	if s.LastSyncDate.Valid {
		d.LastSyncDate = s.LastSyncDate.Time.Format(entity.DateLayout)
	}
	bs, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("can't encode sync status: %w", err)
	}
	_, _, err = tx.Set(syncKey(s.ShopId), string(bs), nil)
	return err
}

func (b *BuntDB) GetSheetSyncStatus(ctx context.Context, shopId int) (*entity.SheetSyncStatus, error) {
	var s *entity.SheetSyncStatus
	err := b.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(syncKey(shopId))
		if err != nil {
			return err
		}
		d := syncDoc{}
		if err := json.Unmarshal([]byte(v), &d); err != nil {
			return err
		}
		s, err = d.entity()
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't get sync status for shop %d: %w", shopId, err)
	}
	return s, nil
}

func (b *BuntDB) UpdateSheetSyncStatus(ctx context.Context, s *entity.SheetSyncStatus) error {
	err := b.db.Update(func(tx *buntdb.Tx) error {
		return putSync(tx, s, b.now().UTC())
	})
	if err != nil {
		return fmt.Errorf("can't update sync status for shop %d: %w", s.ShopId, err)
	}
	return nil
}

// SaveSheetRecords writes the records and the success status in one transaction.
func (b *BuntDB) SaveSheetRecords(ctx context.Context, shopId int, records []entity.MetricRecordInsert, syncedThrough time.Time) error {
	err := b.db.Update(func(tx *buntdb.Tx) error {
		if _, err := getShop(tx, shopId); err != nil {
			return err
		}
		first, err := b.nextMetricIds(tx, len(records))
		if err != nil {
			return err
		}
		if err := putMetrics(tx, first, records); err != nil {
			return err
		}
		return putSync(tx, &entity.SheetSyncStatus{
			ShopId:        shopId,
			LastSyncDate:  sql.NullTime{Time: entity.DateOf(syncedThrough), Valid: true},
			Status:        entity.SheetSyncSuccess,
			RecordsSynced: len(records),
		}, b.now().UTC())
	})
	if err != nil {
		return fmt.Errorf("can't save sheet records for shop %d: %w", shopId, err)
	}
	return nil
}
