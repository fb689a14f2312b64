package form

import (
	"fmt"
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/shopspring/decimal"
)

type AddMetricRecordRequest struct {
	Date          string              `json:"date"`
	Revenue       decimal.Decimal     `json:"revenue"`
	Orders        int                 `json:"orders"`
	TotalPurchase decimal.Decimal     `json:"totalPurchase"`
	Profit        decimal.NullDecimal `json:"profit"`
	ROI           decimal.NullDecimal `json:"roi"`
}

func (r *AddMetricRecordRequest) Validate() error {
	return ValidateStruct(r,
		v.Field(&r.Date, v.Required),
		v.Field(&r.Revenue, v.By(validateNonNegative)),
		v.Field(&r.Orders, v.Min(0)),
		v.Field(&r.TotalPurchase, v.By(validateNonNegative)),
	)
}

// MetricRecordInsert builds the record for shopId on date. Profit defaults to
// revenue - cost and ROI to profit / cost * 100 when not supplied.
func (r *AddMetricRecordRequest) MetricRecordInsert(shopId int, date time.Time) *entity.MetricRecordInsert {
	profit := r.Revenue.Sub(r.TotalPurchase)
	if r.Profit.Valid {
		profit = r.Profit.Decimal
	}
	roi := decimal.Zero
	if r.ROI.Valid {
		roi = r.ROI.Decimal
	} else if !r.TotalPurchase.IsZero() {
		roi = profit.Div(r.TotalPurchase).Mul(hundred).Round(2)
	}
	return &entity.MetricRecordInsert{
		ShopId:        shopId,
		Date:          entity.DateOf(date),
		Revenue:       r.Revenue,
		Orders:        r.Orders,
		TotalPurchase: r.TotalPurchase,
		Profit:        profit,
		ROI:           roi,
	}
}

func validateNonNegative(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return fmt.Errorf("invalid type for amount")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
