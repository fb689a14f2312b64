package metrics

import (
	"sort"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate sums the records matching f. Records for the same shop and day
// are added together, never deduplicated. An empty match yields all zeros.
func Aggregate(records []entity.MetricRecord, f entity.MetricRecordFilter) entity.AggregatedMetrics {
	m := entity.AggregatedMetrics{
		Revenue:       decimal.Zero,
		TotalPurchase: decimal.Zero,
		Profit:        decimal.Zero,
		ROI:           decimal.Zero,
	}
	for i := range records {
		if !f.Match(&records[i]) {
			continue
		}
		m.Revenue = m.Revenue.Add(records[i].Revenue)
		m.Orders += records[i].Orders
		m.TotalPurchase = m.TotalPurchase.Add(records[i].TotalPurchase)
		m.Profit = m.Profit.Add(records[i].Profit)
	}
	m.ROI = ROI(m.Profit, m.TotalPurchase)
	return m
}

// AggregateByShop aggregates the records in tr separately for every shop id present.
func AggregateByShop(records []entity.MetricRecord, tr entity.TimeRange) map[int]entity.AggregatedMetrics {
	byShop := make(map[int][]entity.MetricRecord)
	f := tr.Filter(0)
	for i := range records {
		if f.Match(&records[i]) {
			byShop[records[i].ShopId] = append(byShop[records[i].ShopId], records[i])
		}
	}
	out := make(map[int]entity.AggregatedMetrics, len(byShop))
	for id, rs := range byShop {
		out[id] = Aggregate(rs, entity.MetricRecordFilter{})
	}
	return out
}

// ROI is profit as a percentage of cost. Zero cost yields zero.
func ROI(profit, cost decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return profit.Div(cost).Mul(hundred)
}

// ChangePct returns the percentage change from previous to current,
// or nil when previous is zero and the change is undefined.
func ChangePct(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	diff := current.Sub(previous).Div(previous).Mul(hundred)
	f, _ := diff.Float64()
	return &f
}

func changePctInt(current, previous int) *float64 {
	return ChangePct(decimal.NewFromInt(int64(current)), decimal.NewFromInt(int64(previous)))
}

func compare(cur, prev decimal.Decimal) entity.MetricWithComparison {
	return entity.MetricWithComparison{
		Value:        cur,
		CompareValue: prev,
		ChangePct:    ChangePct(cur, prev),
	}
}

// Overview aggregates every shop over period and over the period right before it.
func Overview(records []entity.MetricRecord, period entity.TimeRange) *entity.MetricsOverview {
	prevPeriod := PreviousPeriod(period)
	cur := Aggregate(records, period.Filter(0))
	prev := Aggregate(records, prevPeriod.Filter(0))

	return &entity.MetricsOverview{
		Period:        period,
		ComparePeriod: prevPeriod,
		Current:       cur,
		Previous:      prev,
		Revenue:       compare(cur.Revenue, prev.Revenue),
		Orders: entity.MetricWithComparison{
			Value:        decimal.NewFromInt(int64(cur.Orders)),
			CompareValue: decimal.NewFromInt(int64(prev.Orders)),
			ChangePct:    changePctInt(cur.Orders, prev.Orders),
		},
		TotalPurchase: compare(cur.TotalPurchase, prev.TotalPurchase),
		Profit:        compare(cur.Profit, prev.Profit),
		ROI:           compare(cur.ROI, prev.ROI),
	}
}

// DailySeries groups the records in tr by day, one point per day from tr.From to tr.To
// in ascending order. Days without records are present with zero values.
func DailySeries(records []entity.MetricRecord, tr entity.TimeRange) []entity.ChartPoint {
	byDay := make(map[time.Time]*entity.ChartPoint, tr.Days())
	points := make([]entity.ChartPoint, 0, tr.Days())
	for d := entity.DateOf(tr.From); !d.After(entity.DateOf(tr.To)); d = d.AddDate(0, 0, 1) {
		points = append(points, entity.ChartPoint{
			Date:    d,
			Revenue: decimal.Zero,
			Profit:  decimal.Zero,
		})
	}
	for i := range points {
		byDay[points[i].Date] = &points[i]
	}

	f := tr.Filter(0)
	for i := range records {
		if !f.Match(&records[i]) {
			continue
		}
		p := byDay[entity.DateOf(records[i].Date)]
		p.Revenue = p.Revenue.Add(records[i].Revenue)
		p.Orders += records[i].Orders
		p.Profit = p.Profit.Add(records[i].Profit)
	}
	return points
}

// RecentFirst returns the records matching f sorted by date, newest first.
// Records of the same day keep their id order.
func RecentFirst(records []entity.MetricRecord, f entity.MetricRecordFilter) []entity.MetricRecord {
	out := make([]entity.MetricRecord, 0)
	for i := range records {
		if f.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Id < out[j].Id
	})
	return out
}
