package form

import (
	"strings"
	"testing"
	"time"

	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

func pct(i int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(i))
}

func TestCreateShopRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateShopRequest
		wantErr bool
	}{
		{"defaults", CreateShopRequest{Name: "Home Expo", Platform: "TikTok", Region: "USA"}, false},
		{"zero share", CreateShopRequest{Name: "A", Platform: "P", Region: "R", ProfitSharePercentage: pct(0)}, false},
		{"full share", CreateShopRequest{Name: "A", Platform: "P", Region: "R", ProfitSharePercentage: pct(100)}, false},
		{"above 100", CreateShopRequest{Name: "A", Platform: "P", Region: "R", ProfitSharePercentage: pct(150)}, true},
		{"negative", CreateShopRequest{Name: "A", Platform: "P", Region: "R", ProfitSharePercentage: pct(-5)}, true},
		{"two decimals", CreateShopRequest{Name: "A", Platform: "P", Region: "R", ProfitSharePercentage: decimal.NewNullDecimal(decimal.RequireFromString("33.25"))}, false},
		{"three decimals", CreateShopRequest{Name: "A", Platform: "P", Region: "R", ProfitSharePercentage: decimal.NewNullDecimal(decimal.RequireFromString("33.333"))}, true},
		{"blank name", CreateShopRequest{Name: "  ", Platform: "P", Region: "R"}, true},
		{"bad sheet id", CreateShopRequest{Name: "A", Platform: "P", Region: "R", SheetId: "not a sheet!"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.True(t, gerr.IsValidation(err), "expected validation error, got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidationDetails(t *testing.T) {
	req := UpdateProfitShareRequest{ProfitSharePercentage: pct(101)}
	err := req.Validate()
	require.Error(t, err)

	st := status.Convert(err)
	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, br.FieldViolations, 1)
	assert.Equal(t, "profitSharePercentage", br.FieldViolations[0].Field)
	assert.True(t, strings.Contains(br.FieldViolations[0].Description, "between 0 and 100"))

	shop := CreateShopRequest{Platform: "TikTok", ProfitSharePercentage: pct(200)}
	st = status.Convert(shop.Validate())
	require.Len(t, st.Details(), 1)
	br = st.Details()[0].(*errdetails.BadRequest)
	fields := make([]string, 0, len(br.FieldViolations))
	for _, v := range br.FieldViolations {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"name", "profitSharePercentage", "region"}, fields)

	missing := UpdateProfitShareRequest{}
	assert.True(t, gerr.IsValidation(missing.Validate()))
}

func TestSheetIdFromURL(t *testing.T) {
	id := "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"
	assert.Equal(t, id, SheetIdFromURL("https://docs.google.com/spreadsheets/d/"+id+"/edit#gid=0"))
	assert.Equal(t, id, SheetIdFromURL(" "+id+" "))

	req := UpdateSheetSourceRequest{SheetId: "https://docs.google.com/spreadsheets/d/" + id + "/edit"}
	require.NoError(t, req.Validate())
	assert.Equal(t, id, req.SheetId)

	unlink := UpdateSheetSourceRequest{}
	assert.NoError(t, unlink.Validate())
}

func TestAddMetricRecordRequest(t *testing.T) {
	req := AddMetricRecordRequest{
		Date:          "2024-03-10",
		Revenue:       decimal.NewFromInt(150),
		Orders:        3,
		TotalPurchase: decimal.NewFromInt(100),
	}
	require.NoError(t, req.Validate())

	r := req.MetricRecordInsert(7, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 7, r.ShopId)
	assert.True(t, r.Profit.Equal(decimal.NewFromInt(50)))
	assert.True(t, r.ROI.Equal(decimal.NewFromInt(50)))

	bad := AddMetricRecordRequest{Date: "2024-03-10", Revenue: decimal.NewFromInt(-1), Orders: -2}
	assert.True(t, gerr.IsValidation(bad.Validate()))

	noDate := AddMetricRecordRequest{Revenue: decimal.NewFromInt(1)}
	assert.True(t, gerr.IsValidation(noDate.Validate()))
}

func TestConnectSheetsRequest(t *testing.T) {
	ok := ConnectSheetsRequest{APIKey: " AIza" + strings.Repeat("x", 35) + " "}
	assert.NoError(t, ok.Validate())

	short := ConnectSheetsRequest{APIKey: "AIza123"}
	assert.True(t, gerr.IsValidation(short.Validate()))

	empty := ConnectSheetsRequest{}
	assert.True(t, gerr.IsValidation(empty.Validate()))
}
