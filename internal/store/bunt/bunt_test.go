package bunt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/matryer/is"
	"github.com/shopspring/decimal"
)

func newTestDB(t *testing.T) *BuntDB {
	t.Helper()
	b, err := New(Config{})
	if err != nil {
		t.Fatalf("can't open bunt store: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func day(s string) time.Time {
	t, _ := time.Parse(entity.DateLayout, s)
	return t
}

func record(shopId int, date string, revenue int64) entity.MetricRecordInsert {
	return entity.MetricRecordInsert{
		ShopId:        shopId,
		Date:          day(date),
		Revenue:       decimal.NewFromInt(revenue),
		Orders:        1,
		TotalPurchase: decimal.NewFromInt(revenue / 2),
		Profit:        decimal.NewFromInt(revenue / 2),
		ROI:           decimal.NewFromInt(100),
	}
}

func TestCRUDShops(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	b := newTestDB(t)

	s, err := b.AddShop(ctx, &entity.ShopInsert{Name: "Home Expo", Platform: "TikTok", Region: "USA"})
	is.NoErr(err)
	is.Equal(s.Id, 1)
	is.True(s.ProfitSharePercentage.Equal(entity.DefaultProfitSharePercentage))
	is.True(!s.HasSheet())

	s2, err := b.AddShop(ctx, &entity.ShopInsert{
		Name:                  "Deal Hoper",
		ProfitSharePercentage: decimal.NewNullDecimal(decimal.NewFromInt(40)),
		SheetId:               "sheet-1",
		SheetName:             "Daily",
	})
	is.NoErr(err)
	is.Equal(s2.Id, 2)
	is.True(s2.HasSheet())
	is.Equal(s2.SheetName.String, "Daily")

	shops, err := b.GetShops(ctx)
	is.NoErr(err)
	is.Equal(len(shops), 2)
	is.Equal(shops[0].Name, "Home Expo")

	upd, err := b.UpdateProfitShare(ctx, 1, decimal.NewFromInt(70))
	is.NoErr(err)
	is.True(upd.ProfitSharePercentage.Equal(decimal.NewFromInt(70)))

	got, err := b.GetShopById(ctx, 1)
	is.NoErr(err)
	is.True(got.ProfitSharePercentage.Equal(decimal.NewFromInt(70)))

	upd, err = b.UpdateSheetSource(ctx, 2, "", "ignored")
	is.NoErr(err)
	is.True(!upd.HasSheet())
	is.True(!upd.SheetName.Valid)

	_, err = b.GetShopById(ctx, 99)
	is.True(gerr.IsNotFound(err))

	_, err = b.UpdateProfitShare(ctx, 99, decimal.NewFromInt(1))
	is.True(gerr.IsNotFound(err))
}

func TestMetricRecordsFilter(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	b := newTestDB(t)

	is.NoErr(b.AddMetricRecords(ctx, []entity.MetricRecordInsert{
		record(1, "2024-03-10", 100),
		record(2, "2024-03-09", 200),
		record(1, "2024-03-01", 300),
	}))
	r, err := b.AddMetricRecord(ctx, &entity.MetricRecordInsert{
		ShopId: 1, Date: day("2024-03-10"), Revenue: decimal.NewFromInt(5),
	})
	is.NoErr(err)
	is.Equal(r.Id, 4)

	all, err := b.GetMetricRecords(ctx, entity.MetricRecordFilter{})
	is.NoErr(err)
	is.Equal(len(all), 4)
	is.Equal(all[0].Date, day("2024-03-01"))
	is.Equal(all[3].Id, 4)

	shop1, err := b.GetMetricRecords(ctx, entity.MetricRecordFilter{
		ShopId: 1,
		From:   day("2024-03-05"),
		To:     day("2024-03-10"),
	})
	is.NoErr(err)
	is.Equal(len(shop1), 2)
	is.Equal(shop1[0].Id, 1)
	is.Equal(shop1[1].Id, 4)

	upTo, err := b.GetMetricRecords(ctx, entity.MetricRecordFilter{To: day("2024-03-09")})
	is.NoErr(err)
	is.Equal(len(upTo), 2)

	from, err := b.GetMetricRecords(ctx, entity.MetricRecordFilter{From: day("2024-03-10")})
	is.NoErr(err)
	is.Equal(len(from), 2)
	is.True(from[0].Revenue.Equal(decimal.NewFromInt(100)))
}

func TestDeleteShopCascades(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	b := newTestDB(t)

	a, err := b.AddShop(ctx, &entity.ShopInsert{Name: "A"})
	is.NoErr(err)
	c, err := b.AddShop(ctx, &entity.ShopInsert{Name: "B"})
	is.NoErr(err)

	is.NoErr(b.AddMetricRecords(ctx, []entity.MetricRecordInsert{
		record(a.Id, "2024-03-10", 100),
		record(c.Id, "2024-03-10", 200),
	}))
	is.NoErr(b.SaveSheetRecords(ctx, a.Id, []entity.MetricRecordInsert{record(a.Id, "2024-03-09", 50)}, day("2024-03-09")))

	is.NoErr(b.DeleteShop(ctx, a.Id))

	_, err = b.GetShopById(ctx, a.Id)
	is.True(gerr.IsNotFound(err))

	left, err := b.GetMetricRecords(ctx, entity.MetricRecordFilter{})
	is.NoErr(err)
	is.Equal(len(left), 1)
	is.Equal(left[0].ShopId, c.Id)

	st, err := b.GetSheetSyncStatus(ctx, a.Id)
	is.NoErr(err)
	is.True(st == nil)

	err = b.DeleteShop(ctx, a.Id)
	is.True(gerr.IsNotFound(err))
}

func TestSheetSyncStatus(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	b := newTestDB(t)

	s, err := b.AddShop(ctx, &entity.ShopInsert{Name: "A", SheetId: "sheet"})
	is.NoErr(err)

	st, err := b.GetSheetSyncStatus(ctx, s.Id)
	is.NoErr(err)
	is.True(st == nil)

	rows := []entity.MetricRecordInsert{
		record(s.Id, "2024-03-08", 10),
		record(s.Id, "2024-03-09", 20),
	}
	is.NoErr(b.SaveSheetRecords(ctx, s.Id, rows, day("2024-03-09")))

	st, err = b.GetSheetSyncStatus(ctx, s.Id)
	is.NoErr(err)
	is.Equal(st.Status, entity.SheetSyncSuccess)
	is.Equal(st.RecordsSynced, 2)
	is.True(st.LastSyncDate.Valid)
	is.Equal(st.LastSyncDate.Time, day("2024-03-09"))

	st.Status = entity.SheetSyncError
	st.ErrorMsg = "quota exceeded"
	st.RecordsSynced = 0
	is.NoErr(b.UpdateSheetSyncStatus(ctx, st))

	st, err = b.GetSheetSyncStatus(ctx, s.Id)
	is.NoErr(err)
	is.Equal(st.Status, entity.SheetSyncError)
	is.Equal(st.ErrorMsg, "quota exceeded")
	is.Equal(st.LastSyncDate.Time, day("2024-03-09"))

	err = b.SaveSheetRecords(ctx, 42, rows, day("2024-03-09"))
	is.True(gerr.IsNotFound(err))
	recs, err := b.GetMetricRecords(ctx, entity.MetricRecordFilter{ShopId: 42})
	is.NoErr(err)
	is.Equal(len(recs), 0)
}

func TestReopenRestoresSequences(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metrics.db")

	b, err := New(Config{Path: path})
	is.NoErr(err)
	_, err = b.AddShop(ctx, &entity.ShopInsert{Name: "A"})
	is.NoErr(err)
	is.NoErr(b.AddMetricRecords(ctx, []entity.MetricRecordInsert{record(1, "2024-03-10", 1), record(1, "2024-03-11", 2)}))
	b.Close()

	b, err = New(Config{Path: path})
	is.NoErr(err)
	defer b.Close()

	s, err := b.AddShop(ctx, &entity.ShopInsert{Name: "B"})
	is.NoErr(err)
	is.Equal(s.Id, 2)
	r, err := b.AddMetricRecord(ctx, &entity.MetricRecordInsert{ShopId: 1, Date: day("2024-03-12")})
	is.NoErr(err)
	is.Equal(r.Id, 3)
}

func TestReopenAfterDeletingNewestDoesNotReuseIds(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metrics.db")

	b, err := New(Config{Path: path})
	is.NoErr(err)
	_, err = b.AddShop(ctx, &entity.ShopInsert{Name: "A"})
	is.NoErr(err)
	shopB, err := b.AddShop(ctx, &entity.ShopInsert{Name: "B"})
	is.NoErr(err)
	is.Equal(shopB.Id, 2)
	is.NoErr(b.AddMetricRecords(ctx, []entity.MetricRecordInsert{record(1, "2024-03-10", 1), record(2, "2024-03-10", 2)}))
	is.NoErr(b.DeleteShop(ctx, shopB.Id))
	b.Close()

	b, err = New(Config{Path: path})
	is.NoErr(err)
	defer b.Close()

	s, err := b.AddShop(ctx, &entity.ShopInsert{Name: "C"})
	is.NoErr(err)
	is.Equal(s.Id, 3)
	r, err := b.AddMetricRecord(ctx, &entity.MetricRecordInsert{ShopId: 1, Date: day("2024-03-11")})
	is.NoErr(err)
	is.Equal(r.Id, 3)
}
