// Package dashboard answers the analytics questions of the API: shop
// management, aggregated metrics over time windows and the agency's profit.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jekabolt/shop-metrics/internal/dependency"
	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/jekabolt/shop-metrics/internal/metrics"
)

// Default windows per view when the caller sends no filter.
const (
	DefaultOverviewFilter    = metrics.FilterToday
	DefaultPerformanceFilter = metrics.FilterToday
	DefaultCombinedFilter    = metrics.Filter30d
	DefaultAgencyFilter      = metrics.FilterMTD
	DefaultChartFilter       = metrics.Filter30d
)

// MaxChartDays bounds the chart series, which holds one point per day.
const MaxChartDays = 366

// WindowQuery is a time window as sent by a caller: a filter token and/or explicit bounds.
type WindowQuery struct {
	Filter string
	From   *time.Time
	To     *time.Time
}

type Service struct {
	repo     dependency.Repository
	resolver *metrics.Resolver
	syncer   dependency.SheetSyncer
	sheets   dependency.SheetsConnector
}

// New creates the service. syncer and sheets may be nil when spreadsheet import is off.
func New(repo dependency.Repository, resolver *metrics.Resolver, syncer dependency.SheetSyncer, sheets dependency.SheetsConnector) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		syncer:   syncer,
		sheets:   sheets,
	}
}

// Resolver exposes the clock used for windows, e.g. to parse dates in the same time zone.
func (s *Service) Resolver() *metrics.Resolver {
	return s.resolver
}

func (s *Service) resolve(q WindowQuery, def metrics.Filter) (entity.TimeRange, metrics.Filter, error) {
	f := metrics.ParseFilter(q.Filter, def)
	tr, err := s.resolver.Resolve(f, q.From, q.To)
	if err != nil {
		return entity.TimeRange{}, f, err
	}
	if q.From != nil && q.To != nil {
		f = metrics.FilterCustom
	}
	return tr, f, nil
}

// ResolveTimeWindow resolves q, using def when q has no filter, and adds the previous period.
func (s *Service) ResolveTimeWindow(q WindowQuery, def metrics.Filter) (*entity.TimeWindow, error) {
	tr, f, err := s.resolve(q, def)
	if err != nil {
		return nil, err
	}
	return &entity.TimeWindow{
		Filter:   string(f),
		Period:   tr,
		Previous: metrics.PreviousPeriod(tr),
	}, nil
}

func (s *Service) records(ctx context.Context, f entity.MetricRecordFilter) ([]entity.MetricRecord, error) {
	rs, err := s.repo.Metrics().GetMetricRecords(ctx, f)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't get metric records",
			slog.String("err", err.Error()))
		return nil, err
	}
	return rs, nil
}

// GetAggregatedMetrics sums the records of one shop, or every shop when shopId is 0.
// Either bound may be nil to leave that side of the window open.
func (s *Service) GetAggregatedMetrics(ctx context.Context, shopId int, from, to *time.Time) (entity.AggregatedMetrics, error) {
	f := entity.MetricRecordFilter{ShopId: shopId}
	if from != nil {
		f.From = entity.DateOf(*from)
	}
	if to != nil {
		f.To = entity.DateOf(*to)
	}
	if from != nil && to != nil {
		if _, err := metrics.NewRange(*from, *to); err != nil {
			return entity.AggregatedMetrics{}, err
		}
	}
	if shopId != 0 {
		if _, err := s.repo.Shops().GetShopById(ctx, shopId); err != nil {
			return entity.AggregatedMetrics{}, err
		}
	}
	rs, err := s.records(ctx, f)
	if err != nil {
		return entity.AggregatedMetrics{}, err
	}
	return metrics.Aggregate(rs, f), nil
}

// GetMetricsOverview compares all shops over the window with the previous period.
func (s *Service) GetMetricsOverview(ctx context.Context, q WindowQuery) (*entity.MetricsOverview, error) {
	tr, _, err := s.resolve(q, DefaultOverviewFilter)
	if err != nil {
		return nil, err
	}
	prev := metrics.PreviousPeriod(tr)
	rs, err := s.records(ctx, entity.MetricRecordFilter{From: prev.From, To: tr.To})
	if err != nil {
		return nil, err
	}
	return metrics.Overview(rs, tr), nil
}

// GetShopPerformance returns the detail view of one shop: the selected window,
// fixed today / 7 day / 30 day blocks and the last seven days of records.
func (s *Service) GetShopPerformance(ctx context.Context, shopId int, q WindowQuery) (*entity.ShopPerformance, error) {
	tr, _, err := s.resolve(q, DefaultPerformanceFilter)
	if err != nil {
		return nil, err
	}
	shop, err := s.repo.Shops().GetShopById(ctx, shopId)
	if err != nil {
		return nil, err
	}

	today := s.resolver.Trailing(0)
	week := s.resolver.Trailing(7)
	month := s.resolver.Trailing(30)

	span := entity.TimeRange{From: month.From, To: month.To}
	if tr.From.Before(span.From) {
		span.From = tr.From
	}
	if tr.To.After(span.To) {
		span.To = tr.To
	}
	rs, err := s.records(ctx, span.Filter(shopId))
	if err != nil {
		return nil, err
	}

	st, err := s.repo.SheetSync().GetSheetSyncStatus(ctx, shopId)
	if err != nil {
		return nil, err
	}

	return &entity.ShopPerformance{
		Shop:           *shop,
		Period:         tr,
		Selected:       metrics.Aggregate(rs, tr.Filter(shopId)),
		Today:          metrics.Aggregate(rs, today.Filter(shopId)),
		LastSevenDays:  metrics.Aggregate(rs, week.Filter(shopId)),
		LastThirtyDays: metrics.Aggregate(rs, month.Filter(shopId)),
		Daily:          metrics.RecentFirst(rs, week.Filter(shopId)),
		SyncStatus:     st,
	}, nil
}

// GetCombinedPerformance sums every shop over the window.
func (s *Service) GetCombinedPerformance(ctx context.Context, q WindowQuery) (*entity.CombinedPerformance, error) {
	tr, _, err := s.resolve(q, DefaultCombinedFilter)
	if err != nil {
		return nil, err
	}
	shops, err := s.repo.Shops().GetShops(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := s.records(ctx, tr.Filter(0))
	if err != nil {
		return nil, err
	}
	return &entity.CombinedPerformance{
		Period:  tr,
		Stores:  len(shops),
		Metrics: metrics.Aggregate(rs, tr.Filter(0)),
	}, nil
}

// GetAgencyProfitBreakdown computes the agency's cut per shop over the window
// using each shop's current profit share.
func (s *Service) GetAgencyProfitBreakdown(ctx context.Context, q WindowQuery) (*entity.AgencyProfitReport, error) {
	tr, _, err := s.resolve(q, DefaultAgencyFilter)
	if err != nil {
		return nil, err
	}
	shops, err := s.repo.Shops().GetShops(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := s.records(ctx, tr.Filter(0))
	if err != nil {
		return nil, err
	}
	report := metrics.AgencyProfit(shops, metrics.AggregateByShop(rs, tr))
	report.Period = tr
	return report, nil
}

// GetChartData returns one point per day of the window across all shops.
func (s *Service) GetChartData(ctx context.Context, q WindowQuery) ([]entity.ChartPoint, entity.TimeRange, error) {
	tr, _, err := s.resolve(q, DefaultChartFilter)
	if err != nil {
		return nil, entity.TimeRange{}, err
	}
	if tr.Days() > MaxChartDays {
		return nil, entity.TimeRange{}, fmt.Errorf("%w: %d days, at most %d", gerr.RangeTooLong, tr.Days(), MaxChartDays)
	}
	rs, err := s.records(ctx, tr.Filter(0))
	if err != nil {
		return nil, entity.TimeRange{}, err
	}
	return metrics.DailySeries(rs, tr), tr, nil
}

// SyncShop imports spreadsheet rows for one shop now.
func (s *Service) SyncShop(ctx context.Context, shopId int) (*entity.SheetSyncStatus, error) {
	if s.syncer == nil {
		return nil, gerr.SyncDisabled
	}
	st, err := s.syncer.SyncShop(ctx, shopId)
	if err != nil {
		return nil, fmt.Errorf("sync shop %d: %w", shopId, err)
	}
	return st, nil
}

// ConnectSheets installs a Sheets API key. The key is expected to be validated by the caller.
func (s *Service) ConnectSheets(ctx context.Context, apiKey string) error {
	if s.sheets == nil {
		return gerr.SyncDisabled
	}
	if err := s.sheets.SetAPIKey(ctx, apiKey); err != nil {
		return fmt.Errorf("%w: %v", gerr.UpstreamUnavailable, err)
	}
	return nil
}
