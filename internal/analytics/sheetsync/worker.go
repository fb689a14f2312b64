package sheetsync

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jekabolt/shop-metrics/internal/dependency"
	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/jekabolt/shop-metrics/internal/instrument"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the sheet sync worker.
type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	WorkerInterval time.Duration `mapstructure:"worker_interval"`
	// LookbackDays bounds the first import of a shop that was never synced.
	LookbackDays int `mapstructure:"lookback_days"`
	// Concurrency is how many shops are synced at the same time.
	Concurrency int `mapstructure:"concurrency"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		WorkerInterval: 1 * time.Hour,
		LookbackDays:   30,
		Concurrency:    4,
	}
}

// Worker periodically imports new spreadsheet rows for every shop linked to a sheet.
// Rows are imported up to yesterday; today's row is still being filled in.
type Worker struct {
	source dependency.MetricsSource
	repo   dependency.Repository
	c      *Config
	loc    *time.Location
	now    func() time.Time

	// shopLocks serializes syncs of the same shop between the ticker and manual runs.
	shopLocks sync.Map

	ctx  context.Context
	stop context.CancelFunc
}

// New creates a new sheet sync worker. A nil loc means UTC.
func New(source dependency.MetricsSource, repo dependency.Repository, c *Config, loc *time.Location) *Worker {
	if c == nil {
		dc := DefaultConfig()
		c = &dc
	}
	if c.WorkerInterval == 0 {
		c.WorkerInterval = 1 * time.Hour
	}
	if c.LookbackDays == 0 {
		c.LookbackDays = 30
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Worker{
		source: source,
		repo:   repo,
		c:      c,
		loc:    loc,
		now:    time.Now,
	}
}

// Start starts the worker.
func (w *Worker) Start(ctx context.Context) error {
	if w.ctx != nil && w.stop != nil {
		return fmt.Errorf("sheet sync worker already started")
	}
	w.ctx, w.stop = context.WithCancel(ctx)
	go w.worker(w.ctx)
	return nil
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() error {
	if w.stop == nil {
		return fmt.Errorf("sheet sync worker already stopped or not started")
	}
	w.stop()
	w.stop = nil
	return nil
}

func (w *Worker) worker(ctx context.Context) {
	if err := w.SyncAll(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "sheet sync failed on startup",
			slog.String("err", err.Error()))
	}

	ticker := time.NewTicker(w.c.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.SyncAll(ctx); err != nil {
				slog.Default().ErrorContext(ctx, "sheet sync failed",
					slog.String("err", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}

// SyncAll syncs every shop that has a spreadsheet. A failing shop is logged and
// recorded in its sync status; it never stops the other shops.
func (w *Worker) SyncAll(ctx context.Context) error {
	shops, err := w.repo.Shops().GetShops(ctx)
	if err != nil {
		return fmt.Errorf("can't list shops: %w", err)
	}

	runId := uuid.NewString()
	slog.Default().InfoContext(ctx, "starting sheet sync",
		slog.String("run_id", runId),
		slog.Int("shops", len(shops)))

	var (
		mu      sync.Mutex
		total   int
		failed  int
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(w.c.Concurrency)
	for i := range shops {
		shop := shops[i]
		if !shop.HasSheet() {
			continue
		}
		g.Go(func() error {
			st, err := w.syncShop(gctx, &shop)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				slog.Default().ErrorContext(gctx, "shop sheet sync failed",
					slog.String("run_id", runId),
					slog.Int("shop_id", shop.Id),
					slog.String("err", err.Error()))
				return nil
			}
			total += st.RecordsSynced
			return nil
		})
	}
	_ = g.Wait()

	slog.Default().InfoContext(ctx, "sheet sync completed",
		slog.String("run_id", runId),
		slog.Int("records", total),
		slog.Int("failed_shops", failed))
	return ctx.Err()
}

// SyncShop imports new rows for one shop right away.
func (w *Worker) SyncShop(ctx context.Context, shopId int) (*entity.SheetSyncStatus, error) {
	shop, err := w.repo.Shops().GetShopById(ctx, shopId)
	if err != nil {
		return nil, err
	}
	if !shop.HasSheet() {
		return nil, fmt.Errorf("%w: shop %d", gerr.SheetNotConfigured, shopId)
	}
	return w.syncShop(ctx, shop)
}

func (w *Worker) lockShop(shopId int) func() {
	l, _ := w.shopLocks.LoadOrStore(shopId, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// syncShop fetches the sheet and stores rows dated after the last synced day
// through yesterday. On failure the status is set to error and the last synced
// day is kept, so the next run retries the same days.
func (w *Worker) syncShop(ctx context.Context, shop *entity.Shop) (*entity.SheetSyncStatus, error) {
	defer w.lockShop(shop.Id)()

	prev, err := w.repo.SheetSync().GetSheetSyncStatus(ctx, shop.Id)
	if err != nil {
		return nil, err
	}

	yesterday := entity.DateOf(w.now().In(w.loc)).AddDate(0, 0, -1)
	from := yesterday.AddDate(0, 0, -w.c.LookbackDays)
	if prev != nil && prev.LastSyncDate.Valid {
		from = entity.DateOf(prev.LastSyncDate.Time).AddDate(0, 0, 1)
	}

	rows, err := w.source.FetchMetricRows(ctx, shop.Id, shop.SheetId.String, shop.SheetName.String)
	if err != nil {
		return nil, w.fail(ctx, shop.Id, prev, err)
	}

	fresh := make([]entity.MetricRecordInsert, 0, len(rows))
	for _, r := range rows {
		d := entity.DateOf(r.Date)
		if d.Before(from) || d.After(yesterday) {
			continue
		}
		r.ShopId = shop.Id
		r.Date = d
		fresh = append(fresh, r)
	}

	syncedThrough := yesterday
	if from.After(yesterday) {
		// already synced through yesterday
		syncedThrough = from.AddDate(0, 0, -1)
	}
	if err := w.repo.SheetSync().SaveSheetRecords(ctx, shop.Id, fresh, syncedThrough); err != nil {
		return nil, w.fail(ctx, shop.Id, prev, err)
	}
	instrument.ObserveSync(entity.SheetSyncSuccess, len(fresh))

	slog.Default().InfoContext(ctx, "synced shop sheet",
		slog.Int("shop_id", shop.Id),
		slog.String("from", from.Format(entity.DateLayout)),
		slog.String("through", syncedThrough.Format(entity.DateLayout)),
		slog.Int("records", len(fresh)))

	return &entity.SheetSyncStatus{
		ShopId:        shop.Id,
		LastSyncDate:  sql.NullTime{Time: syncedThrough, Valid: true},
		Status:        entity.SheetSyncSuccess,
		RecordsSynced: len(fresh),
	}, nil
}

func (w *Worker) fail(ctx context.Context, shopId int, prev *entity.SheetSyncStatus, cause error) error {
	instrument.ObserveSync(entity.SheetSyncError, 0)
	st := &entity.SheetSyncStatus{
		ShopId:   shopId,
		Status:   entity.SheetSyncError,
		ErrorMsg: truncate(cause.Error(), maxErrorMsgLen),
	}
	if prev != nil {
		st.LastSyncDate = prev.LastSyncDate
	}
	if err := w.repo.SheetSync().UpdateSheetSyncStatus(ctx, st); err != nil {
		slog.Default().ErrorContext(ctx, "can't record sheet sync failure",
			slog.Int("shop_id", shopId),
			slog.String("err", err.Error()))
	}
	return cause
}

// maxErrorMsgLen matches the error_msg column width.
const maxErrorMsgLen = 1024

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
