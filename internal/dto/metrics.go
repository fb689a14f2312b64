package dto

import (
	"github.com/jekabolt/shop-metrics/internal/entity"
)

type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func ConvertTimeRange(tr entity.TimeRange) TimeRange {
	return TimeRange{From: formatDate(tr.From), To: formatDate(tr.To)}
}

type TimeWindow struct {
	Filter   string    `json:"filter"`
	Period   TimeRange `json:"period"`
	Previous TimeRange `json:"previous"`
	Days     int       `json:"days"`
}

func ConvertTimeWindow(w *entity.TimeWindow) *TimeWindow {
	return &TimeWindow{
		Filter:   w.Filter,
		Period:   ConvertTimeRange(w.Period),
		Previous: ConvertTimeRange(w.Previous),
		Days:     w.Period.Days(),
	}
}

type AggregatedMetrics struct {
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	TotalPurchase float64 `json:"totalPurchase"`
	Profit        float64 `json:"profit"`
	ROI           float64 `json:"roi"`
}

func ConvertAggregatedMetrics(m entity.AggregatedMetrics) AggregatedMetrics {
	return AggregatedMetrics{
		Revenue:       m.Revenue.InexactFloat64(),
		Orders:        m.Orders,
		TotalPurchase: m.TotalPurchase.InexactFloat64(),
		Profit:        m.Profit.InexactFloat64(),
		ROI:           m.ROI.InexactFloat64(),
	}
}

// MetricsOverview keeps the flat current / previous layout of the dashboard
// header and adds per metric change percentages, null when undefined.
type MetricsOverview struct {
	Period        TimeRange `json:"period"`
	ComparePeriod TimeRange `json:"comparePeriod"`

	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	TotalPurchase float64 `json:"totalPurchase"`
	Profit        float64 `json:"profit"`
	ROI           float64 `json:"roi"`

	PreviousRevenue       float64 `json:"previousRevenue"`
	PreviousOrders        int     `json:"previousOrders"`
	PreviousTotalPurchase float64 `json:"previousTotalPurchase"`
	PreviousProfit        float64 `json:"previousProfit"`
	PreviousROI           float64 `json:"previousRoi"`

	Change MetricsChange `json:"change"`
}

type MetricsChange struct {
	Revenue       *float64 `json:"revenue"`
	Orders        *float64 `json:"orders"`
	TotalPurchase *float64 `json:"totalPurchase"`
	Profit        *float64 `json:"profit"`
	ROI           *float64 `json:"roi"`
}

func ConvertMetricsOverview(o *entity.MetricsOverview) *MetricsOverview {
	return &MetricsOverview{
		Period:                ConvertTimeRange(o.Period),
		ComparePeriod:         ConvertTimeRange(o.ComparePeriod),
		Revenue:               o.Current.Revenue.InexactFloat64(),
		Orders:                o.Current.Orders,
		TotalPurchase:         o.Current.TotalPurchase.InexactFloat64(),
		Profit:                o.Current.Profit.InexactFloat64(),
		ROI:                   o.Current.ROI.InexactFloat64(),
		PreviousRevenue:       o.Previous.Revenue.InexactFloat64(),
		PreviousOrders:        o.Previous.Orders,
		PreviousTotalPurchase: o.Previous.TotalPurchase.InexactFloat64(),
		PreviousProfit:        o.Previous.Profit.InexactFloat64(),
		PreviousROI:           o.Previous.ROI.InexactFloat64(),
		Change: MetricsChange{
			Revenue:       o.Revenue.ChangePct,
			Orders:        o.Orders.ChangePct,
			TotalPurchase: o.TotalPurchase.ChangePct,
			Profit:        o.Profit.ChangePct,
			ROI:           o.ROI.ChangePct,
		},
	}
}

type DailyPerformance struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
	ROI     float64 `json:"roi"`
}

type ShopPerformance struct {
	Id               int                `json:"id"`
	Name             string             `json:"name"`
	Platform         string             `json:"platform"`
	Region           string             `json:"region"`
	Period           TimeRange          `json:"period"`
	Selected         AggregatedMetrics  `json:"selected"`
	Today            AggregatedMetrics  `json:"today"`
	LastSevenDays    AggregatedMetrics  `json:"lastSevenDays"`
	LastThirtyDays   AggregatedMetrics  `json:"lastThirtyDays"`
	DailyPerformance []DailyPerformance `json:"dailyPerformance"`
	SyncStatus       *SheetSyncStatus   `json:"syncStatus"`
}

func ConvertShopPerformance(p *entity.ShopPerformance) *ShopPerformance {
	daily := make([]DailyPerformance, 0, len(p.Daily))
	for _, r := range p.Daily {
		daily = append(daily, DailyPerformance{
			Date:    formatDate(r.Date),
			Revenue: r.Revenue.InexactFloat64(),
			Orders:  r.Orders,
			Cost:    r.TotalPurchase.InexactFloat64(),
			Profit:  r.Profit.InexactFloat64(),
			ROI:     r.ROI.InexactFloat64(),
		})
	}
	return &ShopPerformance{
		Id:               p.Shop.Id,
		Name:             p.Shop.Name,
		Platform:         p.Shop.Platform,
		Region:           p.Shop.Region,
		Period:           ConvertTimeRange(p.Period),
		Selected:         ConvertAggregatedMetrics(p.Selected),
		Today:            ConvertAggregatedMetrics(p.Today),
		LastSevenDays:    ConvertAggregatedMetrics(p.LastSevenDays),
		LastThirtyDays:   ConvertAggregatedMetrics(p.LastThirtyDays),
		DailyPerformance: daily,
		SyncStatus:       ConvertEntitySheetSyncStatus(p.SyncStatus),
	}
}

type CombinedPerformance struct {
	Period      TimeRange `json:"period"`
	TotalStores int       `json:"totalStores"`
	AggregatedMetrics
}

func ConvertCombinedPerformance(c *entity.CombinedPerformance) *CombinedPerformance {
	return &CombinedPerformance{
		Period:            ConvertTimeRange(c.Period),
		TotalStores:       c.Stores,
		AggregatedMetrics: ConvertAggregatedMetrics(c.Metrics),
	}
}

type StoreProfit struct {
	Id                    int     `json:"id"`
	Name                  string  `json:"name"`
	Revenue               float64 `json:"revenue"`
	Costs                 float64 `json:"costs"`
	NetProfit             float64 `json:"netProfit"`
	ProfitSharePercentage float64 `json:"profitSharePercentage"`
	AgencyProfit          float64 `json:"agencyProfit"`
}

type AgencyProfit struct {
	Period               TimeRange     `json:"period"`
	Total                float64       `json:"total"`
	TotalStores          int           `json:"totalStores"`
	TotalRevenue         float64       `json:"totalRevenue"`
	AvgProfitShare       float64       `json:"avgProfitShare"`
	StoreProfitBreakdown []StoreProfit `json:"storeProfitBreakdown"`
}

func ConvertAgencyProfitReport(r *entity.AgencyProfitReport) *AgencyProfit {
	out := &AgencyProfit{
		Period:               ConvertTimeRange(r.Period),
		Total:                r.Total.InexactFloat64(),
		TotalStores:          r.TotalStores,
		TotalRevenue:         r.TotalRevenue.InexactFloat64(),
		AvgProfitShare:       r.AvgProfitShare.InexactFloat64(),
		StoreProfitBreakdown: make([]StoreProfit, 0, len(r.Breakdown)),
	}
	for _, b := range r.Breakdown {
		out.StoreProfitBreakdown = append(out.StoreProfitBreakdown, StoreProfit{
			Id:                    b.ShopId,
			Name:                  b.Name,
			Revenue:               b.Revenue.InexactFloat64(),
			Costs:                 b.Costs.InexactFloat64(),
			NetProfit:             b.NetProfit.InexactFloat64(),
			ProfitSharePercentage: b.ProfitSharePercentage.InexactFloat64(),
			AgencyProfit:          b.AgencyProfit.InexactFloat64(),
		})
	}
	return out
}

type ChartPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	Profit  float64 `json:"profit"`
}

func ConvertChartPoints(ps []entity.ChartPoint) []ChartPoint {
	out := make([]ChartPoint, 0, len(ps))
	for _, p := range ps {
		out = append(out, ChartPoint{
			Date:    formatDate(p.Date),
			Revenue: p.Revenue.InexactFloat64(),
			Orders:  p.Orders,
			Profit:  p.Profit.InexactFloat64(),
		})
	}
	return out
}
