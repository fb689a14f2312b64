package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jekabolt/shop-metrics/internal/dependency"
	"github.com/jekabolt/shop-metrics/internal/entity"
)

type sheetSyncStore struct {
	*MYSQLStore
}

// SheetSync returns an object implementing SheetSync interface
func (ms *MYSQLStore) SheetSync() dependency.SheetSync {
	return &sheetSyncStore{
		MYSQLStore: ms,
	}
}

func (ms *sheetSyncStore) GetSheetSyncStatus(ctx context.Context, shopId int) (*entity.SheetSyncStatus, error) {
	query := `SELECT * FROM sheet_sync_status WHERE shop_id = :shopId`
	st, err := QueryNamedOne[entity.SheetSyncStatus](ctx, ms.DB(), query, map[string]any{
		"shopId": shopId,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't get sync status for shop %d: %w", shopId, err)
	}
	return &st, nil
}

func upsertSyncStatus(ctx context.Context, db dependency.DB, s *entity.SheetSyncStatus) error {
	query := `
	INSERT INTO sheet_sync_status (shop_id, last_sync_date, status, records_synced, error_msg)
	VALUES (:shopId, :lastSyncDate, :status, :recordsSynced, :errorMsg)
	ON DUPLICATE KEY UPDATE
		last_sync_date = VALUES(last_sync_date),
		status = VALUES(status),
		records_synced = VALUES(records_synced),
		error_msg = VALUES(error_msg)`

	return ExecNamed(ctx, db, query, map[string]any{
		"shopId":        s.ShopId,
		"lastSyncDate":  s.LastSyncDate,
		"status":        s.Status,
		"recordsSynced": s.RecordsSynced,
		"errorMsg":      s.ErrorMsg,
	})
}

func (ms *sheetSyncStore) UpdateSheetSyncStatus(ctx context.Context, s *entity.SheetSyncStatus) error {
	if err := upsertSyncStatus(ctx, ms.DB(), s); err != nil {
		return fmt.Errorf("can't update sync status for shop %d: %w", s.ShopId, err)
	}
	return nil
}

func (ms *sheetSyncStore) SaveSheetRecords(ctx context.Context, shopId int, records []entity.MetricRecordInsert, syncedThrough time.Time) error {
	err := ms.Tx(ctx, func(ctx context.Context, s *MYSQLStore) error {
		if _, err := s.Shops().GetShopById(ctx, shopId); err != nil {
			return err
		}
		if err := s.Metrics().AddMetricRecords(ctx, records); err != nil {
			return err
		}
		return upsertSyncStatus(ctx, s.DB(), &entity.SheetSyncStatus{
			ShopId:        shopId,
			LastSyncDate:  sql.NullTime{Time: entity.DateOf(syncedThrough), Valid: true},
			Status:        entity.SheetSyncSuccess,
			RecordsSynced: len(records),
		})
	})
	if err != nil {
		return fmt.Errorf("can't save sheet records for shop %d: %w", shopId, err)
	}
	return nil
}
