package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

//go:generate mockery --with-expecter --case underscore --all --output=./mocks
type (
	Shops interface {
		// AddShop creates a shop and returns it with its assigned id.
		AddShop(ctx context.Context, s *entity.ShopInsert) (*entity.Shop, error)
		// GetShops returns all shops ordered by id.
		GetShops(ctx context.Context) ([]entity.Shop, error)
		// GetShopById returns gerr.ShopNotFound when the id is unknown.
		GetShopById(ctx context.Context, id int) (*entity.Shop, error)
		UpdateProfitShare(ctx context.Context, id int, pct decimal.Decimal) (*entity.Shop, error)
		// UpdateSheetSource links the shop to a spreadsheet, empty sheetId unlinks it.
		UpdateSheetSource(ctx context.Context, id int, sheetId, sheetName string) (*entity.Shop, error)
		// DeleteShop removes the shop together with its metric records and sync status.
		DeleteShop(ctx context.Context, id int) error
	}

	Metrics interface {
		AddMetricRecord(ctx context.Context, r *entity.MetricRecordInsert) (*entity.MetricRecord, error)
		AddMetricRecords(ctx context.Context, rs []entity.MetricRecordInsert) error
		// GetMetricRecords returns the records passing the filter ordered by date then id.
		GetMetricRecords(ctx context.Context, f entity.MetricRecordFilter) ([]entity.MetricRecord, error)
	}

	SheetSync interface {
		// GetSheetSyncStatus returns nil without error when the shop was never synced.
		GetSheetSyncStatus(ctx context.Context, shopId int) (*entity.SheetSyncStatus, error)
		UpdateSheetSyncStatus(ctx context.Context, s *entity.SheetSyncStatus) error
		// SaveSheetRecords stores the imported rows and marks the shop synced through
		// syncedThrough in one step. Either both happen or neither does.
		SaveSheetRecords(ctx context.Context, shopId int, records []entity.MetricRecordInsert, syncedThrough time.Time) error
	}

	Repository interface {
		Shops() Shops
		Metrics() Metrics
		SheetSync() SheetSync
		Ping(ctx context.Context) error
		Close()
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	// MetricsSource reads daily metric rows for one shop from an external spreadsheet.
	MetricsSource interface {
		FetchMetricRows(ctx context.Context, shopId int, spreadsheetId, sheetName string) ([]entity.MetricRecordInsert, error)
	}

	// SheetSyncer imports spreadsheet rows on demand.
	SheetSyncer interface {
		SyncShop(ctx context.Context, shopId int) (*entity.SheetSyncStatus, error)
	}

	// SheetsConnector installs spreadsheet credentials at runtime.
	SheetsConnector interface {
		SetAPIKey(ctx context.Context, key string) error
		Connected() bool
	}
)
