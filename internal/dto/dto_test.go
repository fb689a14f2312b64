package dto

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertEntityShop(t *testing.T) {
	s := &entity.Shop{
		Id:                    3,
		Name:                  "Randawoo TTS",
		Platform:              "Facebook",
		Region:                "UK",
		ProfitSharePercentage: decimal.RequireFromString("42.5"),
		SheetId:               sql.NullString{String: "abc", Valid: true},
	}
	out := ConvertEntityShop(s)
	assert.Equal(t, 42.5, out.ProfitSharePercentage)
	require.NotNil(t, out.SheetId)
	assert.Equal(t, "abc", *out.SheetId)
	assert.Nil(t, out.SheetName)
	assert.Nil(t, ConvertEntityShop(nil))
}

func TestConvertMetricsOverview_NullChange(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	pct := 50.0
	o := &entity.MetricsOverview{
		Period:        entity.TimeRange{From: day, To: day},
		ComparePeriod: entity.TimeRange{From: day.AddDate(0, 0, -1), To: day.AddDate(0, 0, -1)},
		Current: entity.AggregatedMetrics{
			Revenue:       decimal.NewFromInt(150),
			TotalPurchase: decimal.Zero,
			Profit:        decimal.Zero,
			ROI:           decimal.Zero,
		},
		Previous: entity.AggregatedMetrics{
			Revenue:       decimal.NewFromInt(100),
			TotalPurchase: decimal.Zero,
			Profit:        decimal.Zero,
			ROI:           decimal.Zero,
		},
		Revenue: entity.MetricWithComparison{ChangePct: &pct},
	}

	b, err := json.Marshal(ConvertMetricsOverview(o))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, 150.0, m["revenue"])
	assert.Equal(t, 100.0, m["previousRevenue"])
	change := m["change"].(map[string]any)
	assert.Equal(t, 50.0, change["revenue"])
	v, ok := change["profit"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, "2024-03-09", m["comparePeriod"].(map[string]any)["from"])
}

func TestConvertCombinedPerformance_Flat(t *testing.T) {
	c := &entity.CombinedPerformance{
		Stores: 2,
		Metrics: entity.AggregatedMetrics{
			Revenue:       decimal.NewFromInt(10),
			Orders:        2,
			TotalPurchase: decimal.NewFromInt(5),
			Profit:        decimal.NewFromInt(5),
			ROI:           decimal.NewFromInt(100),
		},
	}
	b, err := json.Marshal(ConvertCombinedPerformance(c))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, 2.0, m["totalStores"])
	assert.Equal(t, 100.0, m["roi"])
}
