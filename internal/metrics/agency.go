package metrics

import (
	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/shopspring/decimal"
)

// AgencyProfit computes the agency's cut of every shop's net profit.
// perShop holds aggregated metrics keyed by shop id; shops missing from it
// contribute zero. A shop whose costs exceed revenue yields a negative cut,
// which lowers the total.
func AgencyProfit(shops []entity.Shop, perShop map[int]entity.AggregatedMetrics) *entity.AgencyProfitReport {
	r := &entity.AgencyProfitReport{
		Total:          decimal.Zero,
		TotalStores:    len(shops),
		TotalRevenue:   decimal.Zero,
		AvgProfitShare: decimal.Zero,
		Breakdown:      make([]entity.AgencyProfitBreakdown, 0, len(shops)),
	}
	shareSum := decimal.Zero

	for _, s := range shops {
		m, ok := perShop[s.Id]
		if !ok {
			m = Aggregate(nil, entity.MetricRecordFilter{})
		}
		b := ShopAgencyProfit(s, m)
		r.Breakdown = append(r.Breakdown, b)
		r.Total = r.Total.Add(b.AgencyProfit)
		r.TotalRevenue = r.TotalRevenue.Add(b.Revenue)
		shareSum = shareSum.Add(s.ProfitSharePercentage)
	}

	if len(shops) > 0 {
		r.AvgProfitShare = shareSum.Div(decimal.NewFromInt(int64(len(shops))))
	}
	return r
}

// ShopAgencyProfit computes one shop's breakdown from its aggregated metrics.
func ShopAgencyProfit(s entity.Shop, m entity.AggregatedMetrics) entity.AgencyProfitBreakdown {
	net := m.Revenue.Sub(m.TotalPurchase)
	return entity.AgencyProfitBreakdown{
		ShopId:                s.Id,
		Name:                  s.Name,
		Revenue:               m.Revenue,
		Costs:                 m.TotalPurchase,
		NetProfit:             net,
		ProfitSharePercentage: s.ProfitSharePercentage,
		AgencyProfit:          net.Mul(s.ProfitSharePercentage).Div(hundred),
	}
}
