package handler

import (
	"net/http"

	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/service"
)

type RateHandler struct {
	svc *service.ExchangeRateService
}

func NewRateHandler(svc *service.ExchangeRateService) *RateHandler {
	return &RateHandler{svc: svc}
}

type upsertRateRequest struct {
	FromCountry string       `json:"from_country"`
	ToCountry   string       `json:"to_country"`
	Rate        looseDecimal `json:"rate"`
}

// UpsertRate saves the single active rate for a country pair.
func (h *RateHandler) UpsertRate(w http.ResponseWriter, r *http.Request) {
	var req upsertRateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rate, err := h.svc.Upsert(r.Context(), req.FromCountry, req.ToCountry, req.Rate.value())
	if err != nil {
		respondServiceError(w, r, "rate", err)
		return
	}
	RespondJSON(w, http.StatusOK, rate)
}

func (h *RateHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.svc.List(r.Context())
	if err != nil {
		respondServiceError(w, r, "rate", err)
		return
	}
	if rates == nil {
		rates = []models.ExchangeRate{}
	}
	RespondJSON(w, http.StatusOK, map[string]any{"rates": rates, "countries": domain.Countries()})
}
