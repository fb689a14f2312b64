package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jekabolt/shop-metrics/internal/dependency/mocks"
	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/jekabolt/shop-metrics/internal/metrics"
	"github.com/jekabolt/shop-metrics/internal/store/bunt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(entity.DateLayout, s)
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(t *testing.T, now string, syncer *mocks.SheetSyncer, sheets *mocks.SheetsConnector) (*Service, *bunt.BuntDB) {
	t.Helper()
	db, err := bunt.New(bunt.Config{})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	n := day(now).Add(15 * time.Hour)
	r := metrics.NewResolver(time.UTC, func() time.Time { return n })
	s := New(db, r, nil, nil)
	if syncer != nil {
		s.syncer = syncer
	}
	if sheets != nil {
		s.sheets = sheets
	}
	return s, db
}

func addShop(t *testing.T, s *Service, name string, share int64) *entity.Shop {
	t.Helper()
	shop, err := s.CreateShop(context.Background(), &entity.ShopInsert{
		Name:                  name,
		Platform:              "TikTok",
		Region:                "USA",
		ProfitSharePercentage: decimal.NewNullDecimal(decimal.NewFromInt(share)),
	})
	require.NoError(t, err)
	return shop
}

func addRecord(t *testing.T, s *Service, shopId int, date string, revenue, cost string, orders int) {
	t.Helper()
	rev, c := dec(revenue), dec(cost)
	_, err := s.AddMetricRecord(context.Background(), &entity.MetricRecordInsert{
		ShopId:        shopId,
		Date:          day(date),
		Revenue:       rev,
		Orders:        orders,
		TotalPurchase: c,
		Profit:        rev.Sub(c),
		ROI:           metrics.ROI(rev.Sub(c), c),
	})
	require.NoError(t, err)
}

func TestCreateShop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, "2024-03-10", nil, nil)

	t.Run("default share", func(t *testing.T) {
		shop, err := s.CreateShop(ctx, &entity.ShopInsert{Name: "Home Expo", Platform: "TikTok", Region: "USA"})
		require.NoError(t, err)
		assert.True(t, shop.ProfitSharePercentage.Equal(decimal.NewFromInt(50)))
	})

	t.Run("bounds accepted", func(t *testing.T) {
		for _, pct := range []int64{0, 100} {
			shop := addShop(t, s, "edge", pct)
			assert.True(t, shop.ProfitSharePercentage.Equal(decimal.NewFromInt(pct)))
		}
	})

	t.Run("out of range rejected", func(t *testing.T) {
		for _, pct := range []int64{150, -5} {
			_, err := s.CreateShop(ctx, &entity.ShopInsert{
				Name:                  "bad",
				ProfitSharePercentage: decimal.NewNullDecimal(decimal.NewFromInt(pct)),
			})
			assert.ErrorIs(t, err, gerr.InvalidPercentage)
			assert.True(t, gerr.IsValidation(err))
		}
		shops, err := s.ListShops(ctx)
		require.NoError(t, err)
		assert.Len(t, shops, 3)
	})

	t.Run("more than two decimals rejected", func(t *testing.T) {
		_, err := s.CreateShop(ctx, &entity.ShopInsert{
			Name:                  "precise",
			ProfitSharePercentage: decimal.NewNullDecimal(dec("33.333")),
		})
		assert.ErrorIs(t, err, gerr.InvalidPercentage)

		_, err = s.UpdateProfitShare(ctx, 1, dec("12.345"))
		assert.ErrorIs(t, err, gerr.InvalidPercentage)
	})
}

func TestUpdateProfitShare_AppliesToPastPeriods(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, "2024-03-10", nil, nil)

	shop := addShop(t, s, "Deal Hoper", 50)
	addRecord(t, s, shop.Id, "2024-03-05", "1000", "400", 10)

	q := WindowQuery{Filter: "mtd"}
	before, err := s.GetAgencyProfitBreakdown(ctx, q)
	require.NoError(t, err)
	assert.True(t, before.Total.Equal(dec("300")), before.Total.String())

	updated, err := s.UpdateProfitShare(ctx, shop.Id, decimal.NewFromInt(70))
	require.NoError(t, err)
	assert.True(t, updated.ProfitSharePercentage.Equal(decimal.NewFromInt(70)))

	after, err := s.GetAgencyProfitBreakdown(ctx, q)
	require.NoError(t, err)
	assert.True(t, after.Total.Equal(dec("420")), after.Total.String())
	assert.Equal(t, day("2024-03-01"), after.Period.From)
	assert.Equal(t, day("2024-03-10"), after.Period.To)
	require.Len(t, after.Breakdown, 1)
	assert.True(t, after.Breakdown[0].NetProfit.Equal(dec("600")))

	_, err = s.UpdateProfitShare(ctx, shop.Id, decimal.NewFromInt(101))
	assert.ErrorIs(t, err, gerr.InvalidPercentage)

	_, err = s.UpdateProfitShare(ctx, 999, decimal.NewFromInt(10))
	assert.True(t, gerr.IsNotFound(err))
}

func TestDeleteShop_Cascades(t *testing.T) {
	ctx := context.Background()
	s, db := newTestService(t, "2024-03-10", nil, nil)

	a := addShop(t, s, "A", 50)
	b := addShop(t, s, "B", 50)
	addRecord(t, s, a.Id, "2024-03-09", "100", "50", 1)
	addRecord(t, s, b.Id, "2024-03-09", "200", "50", 2)

	require.NoError(t, s.DeleteShop(ctx, a.Id))

	_, err := s.GetShop(ctx, a.Id)
	assert.True(t, gerr.IsNotFound(err))

	recs, err := db.GetMetricRecords(ctx, entity.MetricRecordFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, b.Id, recs[0].ShopId)

	m, err := s.GetAggregatedMetrics(ctx, 0, nil, nil)
	require.NoError(t, err)
	assert.True(t, m.Revenue.Equal(dec("200")))

	assert.True(t, gerr.IsNotFound(s.DeleteShop(ctx, a.Id)))
}

func TestAddMetricRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, "2024-03-10", nil, nil)
	shop := addShop(t, s, "A", 50)

	_, err := s.AddMetricRecord(ctx, &entity.MetricRecordInsert{
		ShopId:  shop.Id,
		Date:    day("2024-03-10"),
		Revenue: dec("-1"),
	})
	assert.ErrorIs(t, err, gerr.NegativeAmount)

	_, err = s.AddMetricRecord(ctx, &entity.MetricRecordInsert{
		ShopId:  999,
		Date:    day("2024-03-10"),
		Revenue: dec("1"),
	})
	assert.True(t, gerr.IsNotFound(err))

	rec, err := s.AddMetricRecord(ctx, &entity.MetricRecordInsert{
		ShopId:        shop.Id,
		Date:          day("2024-03-10").Add(13 * time.Hour),
		Revenue:       dec("10"),
		TotalPurchase: dec("4"),
		Profit:        dec("6"),
		ROI:           dec("150"),
	})
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-10"), rec.Date)
}

func TestGetAggregatedMetrics(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, "2024-03-10", nil, nil)
	a := addShop(t, s, "A", 50)
	b := addShop(t, s, "B", 50)
	addRecord(t, s, a.Id, "2024-03-01", "100", "50", 1)
	addRecord(t, s, a.Id, "2024-03-05", "300", "100", 3)
	addRecord(t, s, b.Id, "2024-03-05", "50", "50", 1)

	from, to := day("2024-03-02"), day("2024-03-10")

	m, err := s.GetAggregatedMetrics(ctx, a.Id, &from, &to)
	require.NoError(t, err)
	assert.True(t, m.Revenue.Equal(dec("300")))
	assert.Equal(t, 3, m.Orders)
	assert.True(t, m.ROI.Equal(dec("200")))

	all, err := s.GetAggregatedMetrics(ctx, 0, &from, nil)
	require.NoError(t, err)
	assert.True(t, all.Revenue.Equal(dec("350")))
	assert.True(t, all.Profit.Equal(dec("200")))
	assert.True(t, all.ROI.Round(2).Equal(dec("133.33")), all.ROI.String())

	empty, err := s.GetAggregatedMetrics(ctx, b.Id, &to, &to)
	require.NoError(t, err)
	assert.True(t, empty.Revenue.IsZero())
	assert.True(t, empty.ROI.IsZero())

	_, err = s.GetAggregatedMetrics(ctx, a.Id, &to, &from)
	assert.ErrorIs(t, err, gerr.InvalidRange)

	_, err = s.GetAggregatedMetrics(ctx, 999, nil, nil)
	assert.True(t, gerr.IsNotFound(err))
}

func TestResolveTimeWindow(t *testing.T) {
	s, _ := newTestService(t, "2024-03-10", nil, nil)

	w, err := s.ResolveTimeWindow(WindowQuery{}, DefaultCombinedFilter)
	require.NoError(t, err)
	assert.Equal(t, "30d", w.Filter)
	assert.Equal(t, day("2024-02-09"), w.Period.From)
	assert.Equal(t, day("2024-03-10"), w.Period.To)
	assert.Equal(t, w.Period.Days(), w.Previous.Days())
	assert.Equal(t, day("2024-02-08"), w.Previous.To)

	from, to := day("2024-01-01"), day("2024-01-31")
	w, err = s.ResolveTimeWindow(WindowQuery{Filter: "7d", From: &from, To: &to}, DefaultCombinedFilter)
	require.NoError(t, err)
	assert.Equal(t, "custom", w.Filter)
	assert.Equal(t, from, w.Period.From)
	assert.Equal(t, day("2023-12-31"), w.Previous.To)

	_, err = s.ResolveTimeWindow(WindowQuery{Filter: "custom"}, DefaultCombinedFilter)
	assert.ErrorIs(t, err, gerr.CustomRangeRequired)

	_, err = s.ResolveTimeWindow(WindowQuery{Filter: "fortnight"}, DefaultCombinedFilter)
	assert.ErrorIs(t, err, gerr.UnknownFilter)
}

func TestGetMetricsOverview(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, "2024-03-10", nil, nil)
	a := addShop(t, s, "A", 50)
	addRecord(t, s, a.Id, "2024-03-10", "200", "100", 4)
	addRecord(t, s, a.Id, "2024-03-09", "100", "50", 2)

	o, err := s.GetMetricsOverview(ctx, WindowQuery{})
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-10"), o.Period.From)
	assert.Equal(t, day("2024-03-09"), o.ComparePeriod.From)
	assert.True(t, o.Revenue.Value.Equal(dec("200")))
	assert.True(t, o.Revenue.CompareValue.Equal(dec("100")))
	require.NotNil(t, o.Revenue.ChangePct)
	assert.InDelta(t, 100.0, *o.Revenue.ChangePct, 1e-9)

	o, err = s.GetMetricsOverview(ctx, WindowQuery{Filter: "yesterday"})
	require.NoError(t, err)
	assert.True(t, o.Revenue.Value.Equal(dec("100")))
	assert.Nil(t, o.Revenue.ChangePct)
}

func TestGetShopPerformance(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, "2024-03-10", nil, nil)
	a := addShop(t, s, "A", 50)
	other := addShop(t, s, "B", 50)
	addRecord(t, s, a.Id, "2024-03-10", "100", "50", 1)
	addRecord(t, s, a.Id, "2024-03-09", "200", "50", 2)
	addRecord(t, s, a.Id, "2024-03-01", "400", "50", 4)
	addRecord(t, s, a.Id, "2024-02-15", "800", "50", 8)
	addRecord(t, s, other.Id, "2024-03-10", "9999", "1", 1)

	p, err := s.GetShopPerformance(ctx, a.Id, WindowQuery{})
	require.NoError(t, err)
	assert.Equal(t, "A", p.Shop.Name)
	assert.True(t, p.Today.Revenue.Equal(dec("100")))
	assert.True(t, p.Selected.Revenue.Equal(dec("100")))
	assert.True(t, p.LastSevenDays.Revenue.Equal(dec("300")))
	assert.True(t, p.LastThirtyDays.Revenue.Equal(dec("1500")))
	assert.Equal(t, 15, p.LastThirtyDays.Orders)
	require.Len(t, p.Daily, 2)
	assert.Equal(t, day("2024-03-10"), p.Daily[0].Date)
	assert.Equal(t, day("2024-03-09"), p.Daily[1].Date)
	assert.Nil(t, p.SyncStatus)

	from, to := day("2024-01-01"), day("2024-02-20")
	p, err = s.GetShopPerformance(ctx, a.Id, WindowQuery{From: &from, To: &to})
	require.NoError(t, err)
	assert.True(t, p.Selected.Revenue.Equal(dec("800")))

	_, err = s.GetShopPerformance(ctx, 999, WindowQuery{})
	assert.True(t, gerr.IsNotFound(err))
}

func TestGetCombinedPerformanceAndChart(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, "2024-03-10", nil, nil)
	a := addShop(t, s, "A", 50)
	b := addShop(t, s, "B", 50)
	addRecord(t, s, a.Id, "2024-03-10", "100", "50", 1)
	addRecord(t, s, b.Id, "2024-03-10", "300", "150", 3)
	addRecord(t, s, b.Id, "2024-03-08", "50", "50", 1)
	addRecord(t, s, b.Id, "2024-01-01", "1000", "0", 1)

	c, err := s.GetCombinedPerformance(ctx, WindowQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Stores)
	assert.True(t, c.Metrics.Revenue.Equal(dec("450")))
	assert.True(t, c.Metrics.ROI.Equal(dec("80")))

	points, tr, err := s.GetChartData(ctx, WindowQuery{Filter: "7d"})
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-03"), tr.From)
	require.Len(t, points, 8)
	assert.Equal(t, day("2024-03-03"), points[0].Date)
	assert.True(t, points[0].Revenue.IsZero())
	assert.True(t, points[5].Revenue.Equal(dec("50")))
	assert.True(t, points[7].Revenue.Equal(dec("400")))
	assert.Equal(t, 4, points[7].Orders)
}

func TestGetChartData_RangeLimit(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, "2024-03-10", nil, nil)

	from, to := day("2024-01-01"), day("2024-12-31")
	points, _, err := s.GetChartData(ctx, WindowQuery{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, points, MaxChartDays)

	from, to = day("0001-01-01"), day("9999-12-31")
	_, _, err = s.GetChartData(ctx, WindowQuery{From: &from, To: &to})
	assert.ErrorIs(t, err, gerr.RangeTooLong)
	assert.True(t, gerr.IsValidation(err))
}

func TestSyncShop(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestService(t, "2024-03-10", nil, nil)
	_, err := s.SyncShop(ctx, 1)
	assert.ErrorIs(t, err, gerr.SyncDisabled)

	syncer := mocks.NewSheetSyncer(t)
	s, _ = newTestService(t, "2024-03-10", syncer, nil)
	want := &entity.SheetSyncStatus{ShopId: 1, Status: entity.SheetSyncSuccess, RecordsSynced: 3}
	syncer.EXPECT().SyncShop(mock.Anything, 1).Return(want, nil).Once()
	got, err := s.SyncShop(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	syncer.EXPECT().SyncShop(mock.Anything, 2).Return(nil, gerr.SheetNotConfigured).Once()
	_, err = s.SyncShop(ctx, 2)
	assert.ErrorIs(t, err, gerr.SheetNotConfigured)
}

func TestConnectSheets(t *testing.T) {
	ctx := context.Background()
	sheets := mocks.NewSheetsConnector(t)
	s, _ := newTestService(t, "2024-03-10", nil, sheets)

	sheets.EXPECT().SetAPIKey(mock.Anything, "key-ok").Return(nil).Once()
	require.NoError(t, s.ConnectSheets(ctx, "key-ok"))

	sheets.EXPECT().SetAPIKey(mock.Anything, "key-bad").Return(errors.New("dial tcp: refused")).Once()
	err := s.ConnectSheets(ctx, "key-bad")
	assert.True(t, gerr.IsUpstreamUnavailable(err))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s, db := newTestService(t, "2024-03-10", nil, nil)

	require.NoError(t, s.Seed(ctx))
	require.NoError(t, s.Seed(ctx))

	shops, err := s.ListShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 4)
	assert.Equal(t, "Home Expo", shops[0].Name)
	assert.True(t, shops[0].ProfitSharePercentage.Equal(decimal.NewFromInt(40)))

	recs, err := db.GetMetricRecords(ctx, entity.MetricRecordFilter{})
	require.NoError(t, err)
	assert.Len(t, recs, 5)

	today, err := s.GetAggregatedMetrics(ctx, shops[0].Id, ptr(day("2024-03-10")), ptr(day("2024-03-10")))
	require.NoError(t, err)
	assert.True(t, today.Revenue.Equal(dec("344.13")))
}

func ptr[T any](v T) *T {
	return &v
}
