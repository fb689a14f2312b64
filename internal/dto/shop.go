package dto

import (
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
)

type Shop struct {
	Id                    int       `json:"id"`
	Name                  string    `json:"name"`
	Platform              string    `json:"platform"`
	Region                string    `json:"region"`
	ProfitSharePercentage float64   `json:"profitSharePercentage"`
	SheetId               *string   `json:"sheetId"`
	SheetName             *string   `json:"sheetName"`
	CreatedAt             time.Time `json:"createdAt"`
}

func ConvertEntityShop(s *entity.Shop) *Shop {
	if s == nil {
		return nil
	}
	out := &Shop{
		Id:                    s.Id,
		Name:                  s.Name,
		Platform:              s.Platform,
		Region:                s.Region,
		ProfitSharePercentage: s.ProfitSharePercentage.InexactFloat64(),
		CreatedAt:             s.CreatedAt,
	}
	if s.SheetId.Valid {
		out.SheetId = &s.SheetId.String
	}
	if s.SheetName.Valid {
		out.SheetName = &s.SheetName.String
	}
	return out
}

func ConvertEntityShops(ss []entity.Shop) []Shop {
	out := make([]Shop, 0, len(ss))
	for i := range ss {
		out = append(out, *ConvertEntityShop(&ss[i]))
	}
	return out
}

type MetricRecord struct {
	Id            int     `json:"id"`
	ShopId        int     `json:"shopId"`
	Date          string  `json:"date"`
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	TotalPurchase float64 `json:"totalPurchase"`
	Profit        float64 `json:"profit"`
	ROI           float64 `json:"roi"`
}

func ConvertEntityMetricRecord(r *entity.MetricRecord) MetricRecord {
	return MetricRecord{
		Id:            r.Id,
		ShopId:        r.ShopId,
		Date:          formatDate(r.Date),
		Revenue:       r.Revenue.InexactFloat64(),
		Orders:        r.Orders,
		TotalPurchase: r.TotalPurchase.InexactFloat64(),
		Profit:        r.Profit.InexactFloat64(),
		ROI:           r.ROI.InexactFloat64(),
	}
}

type SheetSyncStatus struct {
	ShopId        int        `json:"shopId"`
	LastSyncDate  *string    `json:"lastSyncDate"`
	Status        string     `json:"status"`
	RecordsSynced int        `json:"recordsSynced"`
	Error         string     `json:"error,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

func ConvertEntitySheetSyncStatus(s *entity.SheetSyncStatus) *SheetSyncStatus {
	if s == nil {
		return nil
	}
	out := &SheetSyncStatus{
		ShopId:        s.ShopId,
		Status:        s.Status,
		RecordsSynced: s.RecordsSynced,
		Error:         s.ErrorMsg,
	}
	if s.LastSyncDate.Valid {
		d := formatDate(s.LastSyncDate.Time)
		out.LastSyncDate = &d
	}
	if !s.UpdatedAt.IsZero() {
		out.UpdatedAt = &s.UpdatedAt
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format(entity.DateLayout)
}
