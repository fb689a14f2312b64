package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"github.com/jekabolt/shop-metrics/internal/dashboard"
	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/jekabolt/shop-metrics/internal/instrument"
	"github.com/jekabolt/shop-metrics/internal/metrics"
	"github.com/jekabolt/shop-metrics/log"
	"github.com/shopspring/decimal"
)

// Config is the configuration for the http server
type Config struct {
	Port           string        `mapstructure:"port"`
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RateWindow     time.Duration `mapstructure:"rate_window"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Dashboard is what the HTTP API serves.
type Dashboard interface {
	ListShops(ctx context.Context) ([]entity.Shop, error)
	GetShop(ctx context.Context, id int) (*entity.Shop, error)
	CreateShop(ctx context.Context, in *entity.ShopInsert) (*entity.Shop, error)
	UpdateProfitShare(ctx context.Context, id int, pct decimal.Decimal) (*entity.Shop, error)
	UpdateSheetSource(ctx context.Context, id int, sheetId, sheetName string) (*entity.Shop, error)
	DeleteShop(ctx context.Context, id int) error
	AddMetricRecord(ctx context.Context, r *entity.MetricRecordInsert) (*entity.MetricRecord, error)

	ResolveTimeWindow(q dashboard.WindowQuery, def metrics.Filter) (*entity.TimeWindow, error)
	GetAggregatedMetrics(ctx context.Context, shopId int, from, to *time.Time) (entity.AggregatedMetrics, error)
	GetMetricsOverview(ctx context.Context, q dashboard.WindowQuery) (*entity.MetricsOverview, error)
	GetShopPerformance(ctx context.Context, shopId int, q dashboard.WindowQuery) (*entity.ShopPerformance, error)
	GetCombinedPerformance(ctx context.Context, q dashboard.WindowQuery) (*entity.CombinedPerformance, error)
	GetAgencyProfitBreakdown(ctx context.Context, q dashboard.WindowQuery) (*entity.AgencyProfitReport, error)
	GetChartData(ctx context.Context, q dashboard.WindowQuery) ([]entity.ChartPoint, entity.TimeRange, error)

	SyncShop(ctx context.Context, shopId int) (*entity.SheetSyncStatus, error)
	ConnectSheets(ctx context.Context, apiKey string) error
}

// Server is the http server
type Server struct {
	hs        *http.Server
	c         *Config
	svc       Dashboard
	parseDate func(string) (time.Time, error)
	health    func(context.Context) error
	done      chan struct{}
}

// New creates a new server. parseDate turns query dates into calendar days,
// health backs GET /health.
func New(config *Config, svc Dashboard, parseDate func(string) (time.Time, error), health func(context.Context) error) *Server {
	return &Server{
		c:         config,
		svc:       svc,
		parseDate: parseDate,
		health:    health,
		done:      make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Router builds the full handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return isOriginAllowed(origin, s.c.AllowedOrigins)
		},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodOptions,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.RequestLogger)
	r.Use(instrument.Middleware)
	r.Use(middleware.Recoverer)
	if s.c.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.c.RequestTimeout))
	}

	r.Get("/health", s.getHealth)
	r.Handle("/metrics", instrument.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		if s.c.RateLimit > 0 {
			r.Use(httprate.Limit(
				s.c.RateLimit,
				s.c.RateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					render.Render(w, r, ErrTooManyRequests)
				}),
			))
		}

		r.Get("/metrics", s.getMetricsOverview)
		r.Get("/metrics/aggregate", s.getAggregatedMetrics)
		r.Get("/time-window", s.getTimeWindow)
		r.Get("/chart-data", s.getChartData)

		r.Get("/shops", s.listShops)
		r.Post("/shops", s.createShop)
		r.Get("/shops/combined", s.getCombinedPerformance)
		r.Route("/shops/{id}", func(r chi.Router) {
			r.Get("/", s.getShop)
			r.Delete("/", s.deleteShop)
			r.Patch("/profit-share", s.updateProfitShare)
			r.Patch("/sheet", s.updateSheetSource)
			r.Get("/performance", s.getShopPerformance)
			r.Post("/metrics", s.addMetricRecord)
			r.Post("/sync", s.syncShop)
		})

		r.Get("/agency-profit", s.getAgencyProfit)
		r.Get("/agency-profit/export", s.exportAgencyProfit)

		r.Post("/google-sheets/connect", s.connectSheets)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Render(w, r, ErrNotFound)
	})
	return r
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, "shop-metrics new listener",
			slog.String("addr", "http://"+listenerAddr))
		err := s.hs.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()))
		}
		close(s.done)
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.hs.Shutdown(ctx)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			slog.Default().ErrorContext(r.Context(), "health check failed",
				slog.String("err", err.Error()))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "unavailable"})
			return
		}
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	// Always allow localhost origins
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "https://localhost:") {
		return true
	}
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || origin == allowedOrigin {
			return true
		}
	}
	return false
}
