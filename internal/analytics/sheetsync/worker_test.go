package sheetsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jekabolt/shop-metrics/internal/analytics/sheets"
	"github.com/jekabolt/shop-metrics/internal/dependency/mocks"
	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
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

func row(date string, revenue int64) entity.MetricRecordInsert {
	return entity.MetricRecordInsert{
		Date:          day(date),
		Revenue:       decimal.NewFromInt(revenue),
		Orders:        1,
		TotalPurchase: decimal.NewFromInt(revenue / 2),
		Profit:        decimal.NewFromInt(revenue / 2),
		ROI:           decimal.NewFromInt(100),
	}
}

func setup(t *testing.T, now string) (*Worker, *bunt.BuntDB, *mocks.MetricsSource) {
	t.Helper()
	db, err := bunt.New(bunt.Config{})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	src := mocks.NewMetricsSource(t)
	w := New(src, db, &Config{LookbackDays: 5, Concurrency: 2}, time.UTC)
	n := day(now).Add(10 * time.Hour)
	w.now = func() time.Time { return n }
	return w, db, src
}

func TestSyncShop_FirstSyncUsesLookback(t *testing.T) {
	ctx := context.Background()
	w, db, src := setup(t, "2024-03-10")

	shop, err := db.AddShop(ctx, &entity.ShopInsert{Name: "A", SheetId: "sheet-a", SheetName: "Daily"})
	require.NoError(t, err)

	src.EXPECT().FetchMetricRows(mock.Anything, shop.Id, "sheet-a", "Daily").Return([]entity.MetricRecordInsert{
		row("2024-02-20", 1), // before lookback
		row("2024-03-04", 10),
		row("2024-03-09", 20),
		row("2024-03-10", 30), // today, not final yet
	}, nil)

	st, err := w.SyncShop(ctx, shop.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SheetSyncSuccess, st.Status)
	assert.Equal(t, 2, st.RecordsSynced)
	assert.Equal(t, day("2024-03-09"), st.LastSyncDate.Time)

	recs, err := db.GetMetricRecords(ctx, entity.MetricRecordFilter{ShopId: shop.Id})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, day("2024-03-04"), recs[0].Date)
	assert.Equal(t, shop.Id, recs[0].ShopId)
}

func TestSyncShop_Incremental(t *testing.T) {
	ctx := context.Background()
	w, db, src := setup(t, "2024-03-10")

	shop, err := db.AddShop(ctx, &entity.ShopInsert{Name: "A", SheetId: "sheet-a"})
	require.NoError(t, err)
	require.NoError(t, db.SaveSheetRecords(ctx, shop.Id, nil, day("2024-03-07")))

	src.EXPECT().FetchMetricRows(mock.Anything, shop.Id, "sheet-a", "").Return([]entity.MetricRecordInsert{
		row("2024-03-07", 10),
		row("2024-03-08", 20),
		row("2024-03-09", 30),
	}, nil)

	st, err := w.SyncShop(ctx, shop.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, st.RecordsSynced)

	recs, err := db.GetMetricRecords(ctx, entity.MetricRecordFilter{ShopId: shop.Id})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Revenue.Equal(decimal.NewFromInt(20)))
}

func TestSyncShop_FailureKeepsLastSyncDate(t *testing.T) {
	ctx := context.Background()
	w, db, src := setup(t, "2024-03-10")

	shop, err := db.AddShop(ctx, &entity.ShopInsert{Name: "A", SheetId: "sheet-a"})
	require.NoError(t, err)
	require.NoError(t, db.SaveSheetRecords(ctx, shop.Id, nil, day("2024-03-07")))

	src.EXPECT().FetchMetricRows(mock.Anything, shop.Id, "sheet-a", "").
		Return(nil, fmt.Errorf("%w: boom", gerr.UpstreamUnavailable))

	_, err = w.SyncShop(ctx, shop.Id)
	assert.True(t, gerr.IsUpstreamUnavailable(err))

	st, err := db.GetSheetSyncStatus(ctx, shop.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SheetSyncError, st.Status)
	assert.Contains(t, st.ErrorMsg, "boom")
	assert.Equal(t, day("2024-03-07"), st.LastSyncDate.Time)

	recs, err := db.GetMetricRecords(ctx, entity.MetricRecordFilter{ShopId: shop.Id})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSyncShop_NoSheet(t *testing.T) {
	ctx := context.Background()
	w, db, _ := setup(t, "2024-03-10")

	shop, err := db.AddShop(ctx, &entity.ShopInsert{Name: "A"})
	require.NoError(t, err)

	_, err = w.SyncShop(ctx, shop.Id)
	assert.ErrorIs(t, err, gerr.SheetNotConfigured)

	_, err = w.SyncShop(ctx, 404)
	assert.True(t, gerr.IsNotFound(err))
}

func TestSyncAll_FailingShopDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	w, db, src := setup(t, "2024-03-10")

	good, err := db.AddShop(ctx, &entity.ShopInsert{Name: "good", SheetId: "sheet-good"})
	require.NoError(t, err)
	bad, err := db.AddShop(ctx, &entity.ShopInsert{Name: "bad", SheetId: "sheet-bad"})
	require.NoError(t, err)
	_, err = db.AddShop(ctx, &entity.ShopInsert{Name: "manual"})
	require.NoError(t, err)

	src.EXPECT().FetchMetricRows(mock.Anything, good.Id, "sheet-good", "").
		Return([]entity.MetricRecordInsert{row("2024-03-09", 10)}, nil)
	src.EXPECT().FetchMetricRows(mock.Anything, bad.Id, "sheet-bad", "").
		Return(nil, gerr.UpstreamUnavailable)

	require.NoError(t, w.SyncAll(ctx))

	recs, err := db.GetMetricRecords(ctx, entity.MetricRecordFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, good.Id, recs[0].ShopId)

	st, err := db.GetSheetSyncStatus(ctx, bad.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SheetSyncError, st.Status)
	assert.False(t, st.LastSyncDate.Valid)
}

func TestSyncShop_DisabledSourceStoresNothing(t *testing.T) {
	ctx := context.Background()
	db, err := bunt.New(bunt.Config{})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	src, err := sheets.NewClient(ctx, &sheets.Config{SampleFallback: true})
	require.NoError(t, err)
	w := New(src, db, &Config{LookbackDays: 5}, time.UTC)

	shop, err := db.AddShop(ctx, &entity.ShopInsert{Name: "A", SheetId: "sheet-a"})
	require.NoError(t, err)

	_, err = w.SyncShop(ctx, shop.Id)
	assert.True(t, gerr.IsUpstreamUnavailable(err))

	recs, err := db.GetMetricRecords(ctx, entity.MetricRecordFilter{ShopId: shop.Id})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSyncShop_LongErrorIsTruncated(t *testing.T) {
	ctx := context.Background()
	w, db, src := setup(t, "2024-03-10")

	shop, err := db.AddShop(ctx, &entity.ShopInsert{Name: "A", SheetId: "sheet-a"})
	require.NoError(t, err)
	src.EXPECT().FetchMetricRows(mock.Anything, shop.Id, "sheet-a", "").
		Return(nil, errors.New(strings.Repeat("é", 3000)))

	_, err = w.SyncShop(ctx, shop.Id)
	require.Error(t, err)

	st, err := db.GetSheetSyncStatus(ctx, shop.Id)
	require.NoError(t, err)
	assert.Equal(t, maxErrorMsgLen, utf8.RuneCountInString(st.ErrorMsg))
}
