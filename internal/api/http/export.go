package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/xuri/excelize/v2"
)

const agencyProfitSheet = "Agency Profit"

var agencyProfitHeader = []interface{}{
	"Store", "Revenue", "Costs", "Net Profit", "Profit Share %", "Agency Profit",
}

// AgencyProfitWorkbook lays the report out as one row per shop followed by a totals row.
func AgencyProfitWorkbook(rep *entity.AgencyProfitReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", agencyProfitSheet); err != nil {
		f.Close()
		return nil, err
	}
	sw, err := f.NewStreamWriter(agencyProfitSheet)
	if err != nil {
		f.Close()
		return nil, err
	}

	period := fmt.Sprintf("%s - %s",
		rep.Period.From.Format(entity.DateLayout), rep.Period.To.Format(entity.DateLayout))
	rows := [][]interface{}{
		{"Period", period},
		agencyProfitHeader,
	}
	for _, b := range rep.Breakdown {
		rows = append(rows, []interface{}{
			b.Name,
			b.Revenue.InexactFloat64(),
			b.Costs.InexactFloat64(),
			b.NetProfit.InexactFloat64(),
			b.ProfitSharePercentage.InexactFloat64(),
			b.AgencyProfit.InexactFloat64(),
		})
	}
	rows = append(rows, []interface{}{
		"Total",
		rep.TotalRevenue.InexactFloat64(),
		nil,
		nil,
		rep.AvgProfitShare.Round(2).InexactFloat64(),
		rep.Total.InexactFloat64(),
	})

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (s *Server) exportAgencyProfit(w http.ResponseWriter, r *http.Request) {
	wq, err := s.windowQuery(r)
	if err != nil {
		s.renderError(w, r, "bad time window", err)
		return
	}
	rep, err := s.svc.GetAgencyProfitBreakdown(r.Context(), wq)
	if err != nil {
		s.renderError(w, r, "can't compute agency profit", err)
		return
	}
	f, err := AgencyProfitWorkbook(rep)
	if err != nil {
		s.renderError(w, r, "can't build agency profit workbook", err)
		return
	}
	defer f.Close()

	name := fmt.Sprintf("agency-profit_%s_%s.xlsx",
		rep.Period.From.Format(entity.DateLayout), rep.Period.To.Format(entity.DateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	if _, err := f.WriteTo(w); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't write agency profit workbook",
			slog.String("err", err.Error()))
	}
}
