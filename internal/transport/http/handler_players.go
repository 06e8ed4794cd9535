package httptransport

import (
	"encoding/json"
	"net/http"

	appwallet "casino-wallet/internal/app/wallet"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type PlayerHandlers struct {
	svc *appwallet.Service
}

func NewPlayerHandlers(svc *appwallet.Service) *PlayerHandlers {
	return &PlayerHandlers{svc: svc}
}

func (h *PlayerHandlers) Open() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.OpenAccount(r.Context())
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		metricAccountOpenTotal.Add(1)
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *PlayerHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Balance(r.Context(), chi.URLParam(r, "player_id"))
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayerHandlers) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.svc.Transactions(r.Context(), chi.URLParam(r, "player_id"), limit, offset)
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayerHandlers) PlaceBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GameID string          `json:"game_id"`
			Bet    decimal.Decimal `json:"bet"`
			Ref    string          `json:"ref"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		metricBetPlaceTotal.Add(1)
		resp, err := h.svc.PlaceBet(r.Context(), appwallet.PlaceBetInput{
			PlayerID: chi.URLParam(r, "player_id"),
			GameID:   body.GameID,
			Bet:      body.Bet,
			Ref:      body.Ref,
		})
		if err != nil {
			metricBetPlaceErrors.Add(1)
			WriteServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}
