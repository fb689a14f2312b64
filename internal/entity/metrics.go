package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar day format used for storage keys and query params.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar day, expressed as midnight UTC.
// The calendar day is taken in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MetricRecordInsert is one day of raw performance numbers for one shop.
type MetricRecordInsert struct {
	ShopId        int             `db:"shop_id"`
	Date          time.Time       `db:"date"`
	Revenue       decimal.Decimal `db:"revenue"`
	Orders        int             `db:"orders"`
	TotalPurchase decimal.Decimal `db:"total_purchase"`
	Profit        decimal.Decimal `db:"profit"`
	ROI           decimal.Decimal `db:"roi"`
}

// MetricRecord represents the metric_records table
type MetricRecord struct {
	Id int `db:"id"`
	MetricRecordInsert
}

// MetricRecordFilter narrows record retrieval. ShopId 0 matches every shop,
// a zero From or To leaves that side of the range open.
type MetricRecordFilter struct {
	ShopId int
	From   time.Time
	To     time.Time
}

// Match reports whether r passes the filter. Bounds are inclusive days.
func (f MetricRecordFilter) Match(r *MetricRecord) bool {
	if f.ShopId != 0 && r.ShopId != f.ShopId {
		return false
	}
	d := DateOf(r.Date)
	if !f.From.IsZero() && d.Before(DateOf(f.From)) {
		return false
	}
	if !f.To.IsZero() && d.After(DateOf(f.To)) {
		return false
	}
	return true
}

// TimeRange is an inclusive span of calendar days.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Days returns the number of calendar days covered by the range.
func (tr TimeRange) Days() int {
	return int((DateOf(tr.To).Unix()-DateOf(tr.From).Unix())/86400) + 1
}

// Filter converts the range into a record filter for the given shop.
func (tr TimeRange) Filter(shopId int) MetricRecordFilter {
	return MetricRecordFilter{ShopId: shopId, From: tr.From, To: tr.To}
}

// TimeWindow is a resolved filter together with the period it is compared against.
type TimeWindow struct {
	Filter   string
	Period   TimeRange
	Previous TimeRange
}

// AggregatedMetrics is the reduction of a set of metric records.
type AggregatedMetrics struct {
	Revenue       decimal.Decimal
	Orders        int
	TotalPurchase decimal.Decimal
	Profit        decimal.Decimal
	ROI           decimal.Decimal
}

type MetricWithComparison struct {
	Value        decimal.Decimal
	CompareValue decimal.Decimal
	ChangePct    *float64
}

// MetricsOverview compares a period with the period of equal length right before it.
type MetricsOverview struct {
	Period        TimeRange
	ComparePeriod TimeRange
	Current       AggregatedMetrics
	Previous      AggregatedMetrics

	Revenue       MetricWithComparison
	Orders        MetricWithComparison
	TotalPurchase MetricWithComparison
	Profit        MetricWithComparison
	ROI           MetricWithComparison
}

// ShopPerformance is the per-shop detail view.
type ShopPerformance struct {
	Shop           Shop
	Period         TimeRange
	Selected       AggregatedMetrics
	Today          AggregatedMetrics
	LastSevenDays  AggregatedMetrics
	LastThirtyDays AggregatedMetrics
	// Daily holds the last seven days of records, newest first.
	Daily      []MetricRecord
	SyncStatus *SheetSyncStatus
}

// CombinedPerformance sums every shop over one window.
type CombinedPerformance struct {
	Period  TimeRange
	Stores  int
	Metrics AggregatedMetrics
}

// AgencyProfitBreakdown is the agency's cut of one shop's net profit.
type AgencyProfitBreakdown struct {
	ShopId                int
	Name                  string
	Revenue               decimal.Decimal
	Costs                 decimal.Decimal
	NetProfit             decimal.Decimal
	ProfitSharePercentage decimal.Decimal
	AgencyProfit          decimal.Decimal
}

type AgencyProfitReport struct {
	Period         TimeRange
	Total          decimal.Decimal
	TotalStores    int
	TotalRevenue   decimal.Decimal
	AvgProfitShare decimal.Decimal
	Breakdown      []AgencyProfitBreakdown
}

// ChartPoint is one day of cross-shop totals.
type ChartPoint struct {
	Date    time.Time
	Revenue decimal.Decimal
	Orders  int
	Profit  decimal.Decimal
}
