package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jekabolt/shop-metrics/config"
	"github.com/jekabolt/shop-metrics/internal/analytics/sheets"
	"github.com/jekabolt/shop-metrics/internal/analytics/sheetsync"
	httpapi "github.com/jekabolt/shop-metrics/internal/api/http"
	"github.com/jekabolt/shop-metrics/internal/dashboard"
	"github.com/jekabolt/shop-metrics/internal/dependency"
	"github.com/jekabolt/shop-metrics/internal/metrics"
	"github.com/jekabolt/shop-metrics/internal/store"
	"github.com/jekabolt/shop-metrics/internal/store/bunt"
)

// App is the main application
type App struct {
	hs     *httpapi.Server
	db     dependency.Repository
	worker *sheetsync.Worker
	c      *config.Config

	done     chan struct{}
	doneOnce sync.Once
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// OpenRepository opens the store selected by the config.
func OpenRepository(ctx context.Context, c *config.Config) (dependency.Repository, error) {
	switch c.Store.Driver {
	case config.StoreDriverMySQL:
		return store.New(ctx, c.DB)
	case config.StoreDriverBunt, "":
		return bunt.New(c.Bunt)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
}

func location(c *config.Config) (*time.Location, error) {
	if c.Metrics.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Metrics.Timezone)
	if err != nil {
		return nil, fmt.Errorf("bad metrics timezone %q: %w", c.Metrics.Timezone, err)
	}
	return loc, nil
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting shop metrics",
		slog.String("store", a.c.Store.Driver))

	loc, err := location(a.c)
	if err != nil {
		return err
	}

	a.db, err = OpenRepository(ctx, a.c)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't open store",
			slog.String("err", err.Error()))
		return err
	}

	sheetsClient, err := sheets.NewClient(ctx, &a.c.Sheets)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to create sheets client",
			slog.String("err", err.Error()))
		return err
	}

	a.worker = sheetsync.New(sheetsClient, a.db, &a.c.SheetSync, loc)
	if a.c.SheetSync.Enabled {
		if err := a.worker.Start(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "failed to start sheet sync worker",
				slog.String("err", err.Error()))
			return err
		}
	}

	resolver := metrics.NewResolver(loc, nil)
	svc := dashboard.New(a.db, resolver, a.worker, sheetsClient)

	if a.c.Demo.Seed {
		if err := svc.Seed(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "failed to seed demo data",
				slog.String("err", err.Error()))
			return err
		}
	}

	// start API server
	a.hs = httpapi.New(&a.c.HTTP, svc, resolver.ParseDate, a.db.Ping)
	if err = a.hs.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()))
		return err
	}
	go func() {
		<-a.hs.Done()
		a.doneOnce.Do(func() { close(a.done) })
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown failed",
				slog.String("err", err.Error()))
		}
	}
	if a.worker != nil && a.c.SheetSync.Enabled {
		if err := a.worker.Stop(); err != nil {
			slog.Default().WarnContext(ctx, "sheet sync worker stop",
				slog.String("err", err.Error()))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	a.doneOnce.Do(func() { close(a.done) })
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() <-chan struct{} {
	return a.done
}

// RunSheetSync performs a single sync pass over every linked shop and returns.
func RunSheetSync(ctx context.Context, c *config.Config) error {
	loc, err := location(c)
	if err != nil {
		return err
	}
	db, err := OpenRepository(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	sc := c.Sheets
	sc.Enabled = true
	sheetsClient, err := sheets.NewClient(ctx, &sc)
	if err != nil {
		return err
	}
	return sheetsync.New(sheetsClient, db, &c.SheetSync, loc).SyncAll(ctx)
}
