package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"github.com/jekabolt/shop-metrics/internal/dashboard"
	"github.com/jekabolt/shop-metrics/internal/dto"
)

func (s *Server) optionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := s.parseDate(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// windowQuery reads timeFilter (or filter), from and to from the query string.
func (s *Server) windowQuery(r *http.Request) (dashboard.WindowQuery, error) {
	q := r.URL.Query()
	wq := dashboard.WindowQuery{Filter: q.Get("timeFilter")}
	if wq.Filter == "" {
		wq.Filter = q.Get("filter")
	}
	var err error
	if wq.From, err = s.optionalDate(q.Get("from")); err != nil {
		return wq, err
	}
	if wq.To, err = s.optionalDate(q.Get("to")); err != nil {
		return wq, err
	}
	return wq, nil
}

func (s *Server) getTimeWindow(w http.ResponseWriter, r *http.Request) {
	wq, err := s.windowQuery(r)
	if err != nil {
		s.renderError(w, r, "bad time window", err)
		return
	}
	tw, err := s.svc.ResolveTimeWindow(wq, dashboard.DefaultOverviewFilter)
	if err != nil {
		s.renderError(w, r, "can't resolve time window", err)
		return
	}
	render.JSON(w, r, dto.ConvertTimeWindow(tw))
}

func (s *Server) getMetricsOverview(w http.ResponseWriter, r *http.Request) {
	wq, err := s.windowQuery(r)
	if err != nil {
		s.renderError(w, r, "bad time window", err)
		return
	}
	o, err := s.svc.GetMetricsOverview(r.Context(), wq)
	if err != nil {
		s.renderError(w, r, "can't get metrics overview", err)
		return
	}
	render.JSON(w, r, dto.ConvertMetricsOverview(o))
}

// getAggregatedMetrics takes optional shopId, from and to. Missing bounds leave the range open.
func (s *Server) getAggregatedMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := 0
	if v := q.Get("shopId"); v != "" {
		var err error
		if id, err = strconv.Atoi(v); err != nil || id < 0 {
			render.Render(w, r, ErrInvalidRequest(fmt.Errorf("invalid shop id %q", v)))
			return
		}
	}
	from, err := s.optionalDate(q.Get("from"))
	if err != nil {
		s.renderError(w, r, "bad from date", err)
		return
	}
	to, err := s.optionalDate(q.Get("to"))
	if err != nil {
		s.renderError(w, r, "bad to date", err)
		return
	}
	m, err := s.svc.GetAggregatedMetrics(r.Context(), id, from, to)
	if err != nil {
		s.renderError(w, r, "can't aggregate metrics", err)
		return
	}
	render.JSON(w, r, dto.ConvertAggregatedMetrics(m))
}

func (s *Server) getShopPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := shopId(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	wq, err := s.windowQuery(r)
	if err != nil {
		s.renderError(w, r, "bad time window", err)
		return
	}
	p, err := s.svc.GetShopPerformance(r.Context(), id, wq)
	if err != nil {
		s.renderError(w, r, "can't get shop performance", err)
		return
	}
	render.JSON(w, r, dto.ConvertShopPerformance(p))
}

func (s *Server) getCombinedPerformance(w http.ResponseWriter, r *http.Request) {
	wq, err := s.windowQuery(r)
	if err != nil {
		s.renderError(w, r, "bad time window", err)
		return
	}
	c, err := s.svc.GetCombinedPerformance(r.Context(), wq)
	if err != nil {
		s.renderError(w, r, "can't get combined performance", err)
		return
	}
	render.JSON(w, r, dto.ConvertCombinedPerformance(c))
}

func (s *Server) getChartData(w http.ResponseWriter, r *http.Request) {
	wq, err := s.windowQuery(r)
	if err != nil {
		s.renderError(w, r, "bad time window", err)
		return
	}
	points, _, err := s.svc.GetChartData(r.Context(), wq)
	if err != nil {
		s.renderError(w, r, "can't get chart data", err)
		return
	}
	render.JSON(w, r, dto.ConvertChartPoints(points))
}

func (s *Server) getAgencyProfit(w http.ResponseWriter, r *http.Request) {
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
	render.JSON(w, r, dto.ConvertAgencyProfitReport(rep))
}
