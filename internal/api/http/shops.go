package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jekabolt/shop-metrics/internal/dto"
	"github.com/jekabolt/shop-metrics/internal/form"
)

func shopId(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid shop id %q", raw)
	}
	return id, nil
}

func (s *Server) listShops(w http.ResponseWriter, r *http.Request) {
	shops, err := s.svc.ListShops(r.Context())
	if err != nil {
		s.renderError(w, r, "can't list shops", err)
		return
	}
	render.JSON(w, r, dto.ConvertEntityShops(shops))
}

func (s *Server) createShop(w http.ResponseWriter, r *http.Request) {
	req := &form.CreateShopRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		s.renderError(w, r, "create shop request invalid", err)
		return
	}
	shop, err := s.svc.CreateShop(r.Context(), req.ShopInsert())
	if err != nil {
		s.renderError(w, r, "can't create shop", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, dto.ConvertEntityShop(shop))
}

func (s *Server) getShop(w http.ResponseWriter, r *http.Request) {
	id, err := shopId(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	shop, err := s.svc.GetShop(r.Context(), id)
	if err != nil {
		s.renderError(w, r, "can't get shop", err)
		return
	}
	render.JSON(w, r, dto.ConvertEntityShop(shop))
}

func (s *Server) deleteShop(w http.ResponseWriter, r *http.Request) {
	id, err := shopId(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := s.svc.DeleteShop(r.Context(), id); err != nil {
		s.renderError(w, r, "can't delete shop", err)
		return
	}
	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "Shop successfully deleted",
	})
}

func (s *Server) updateProfitShare(w http.ResponseWriter, r *http.Request) {
	id, err := shopId(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	req := &form.UpdateProfitShareRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		s.renderError(w, r, "profit share request invalid", err)
		return
	}
	shop, err := s.svc.UpdateProfitShare(r.Context(), id, req.ProfitSharePercentage.Decimal)
	if err != nil {
		s.renderError(w, r, "can't update profit share", err)
		return
	}
	render.JSON(w, r, dto.ConvertEntityShop(shop))
}

func (s *Server) updateSheetSource(w http.ResponseWriter, r *http.Request) {
	id, err := shopId(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	req := &form.UpdateSheetSourceRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		s.renderError(w, r, "sheet source request invalid", err)
		return
	}
	shop, err := s.svc.UpdateSheetSource(r.Context(), id, req.SheetId, req.SheetName)
	if err != nil {
		s.renderError(w, r, "can't update sheet source", err)
		return
	}
	render.JSON(w, r, dto.ConvertEntityShop(shop))
}

func (s *Server) addMetricRecord(w http.ResponseWriter, r *http.Request) {
	id, err := shopId(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	req := &form.AddMetricRecordRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		s.renderError(w, r, "metric record request invalid", err)
		return
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		s.renderError(w, r, "metric record date invalid", err)
		return
	}
	rec, err := s.svc.AddMetricRecord(r.Context(), req.MetricRecordInsert(id, date))
	if err != nil {
		s.renderError(w, r, "can't add metric record", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, dto.ConvertEntityMetricRecord(rec))
}

func (s *Server) syncShop(w http.ResponseWriter, r *http.Request) {
	id, err := shopId(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	st, err := s.svc.SyncShop(r.Context(), id)
	if err != nil {
		s.renderError(w, r, "can't sync shop", err)
		return
	}
	render.JSON(w, r, dto.ConvertEntitySheetSyncStatus(st))
}

func (s *Server) connectSheets(w http.ResponseWriter, r *http.Request) {
	req := &form.ConnectSheetsRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		s.renderError(w, r, "connect sheets request invalid", err)
		return
	}
	if err := s.svc.ConnectSheets(r.Context(), req.APIKey); err != nil {
		s.renderError(w, r, "can't connect sheets", err)
		return
	}
	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "API key saved successfully",
	})
}
