// Package instrument holds the service's Prometheus collectors.
package instrument

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SheetSyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_metrics_sheet_sync_runs_total",
		Help: "Spreadsheet sync attempts per shop by outcome",
	}, []string{"status"})

	SheetSyncRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_metrics_sheet_sync_records_total",
		Help: "Metric records imported from spreadsheets",
	})

	MetricRecordsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_metrics_records_ingested_total",
		Help: "Metric records added through the API",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_metrics_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_metrics_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// ObserveSync records the outcome of one shop sync.
func ObserveSync(status string, records int) {
	SheetSyncRuns.WithLabelValues(status).Inc()
	if records > 0 {
		SheetSyncRecords.Add(float64(records))
	}
}

// Middleware counts requests per chi route pattern so ids don't blow up label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
