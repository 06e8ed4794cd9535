package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	appwallet "casino-wallet/internal/app/wallet"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type AdminHandlers struct {
	svc    *appwallet.Service
	health Pinger
}

func NewAdminHandlers(svc *appwallet.Service, health Pinger) *AdminHandlers {
	return &AdminHandlers{svc: svc, health: health}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.health != nil {
			if err := h.health.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "store": "down"})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "store": "up"})
	}
}

type adjustBody struct {
	Amount decimal.Decimal `json:"amount"`
	Ref    string          `json:"ref"`
}

func (h *AdminHandlers) Credit() http.HandlerFunc {
	return h.adjust(h.svc.Credit)
}

func (h *AdminHandlers) Debit() http.HandlerFunc {
	return h.adjust(h.svc.Debit)
}

func (h *AdminHandlers) adjust(apply func(context.Context, appwallet.AdjustInput) (*appwallet.BalanceResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adjustBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := apply(r.Context(), appwallet.AdjustInput{
			PlayerID: chi.URLParam(r, "player_id"),
			Amount:   body.Amount,
			Ref:      body.Ref,
		})
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		metricAdminAdjustTotal.Add(1)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) SetBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Balance decimal.Decimal `json:"balance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.SetBalance(r.Context(), chi.URLParam(r, "player_id"), body.Balance)
		if err != nil {
			WriteServiceError(w, r, err)
			return
		}
		metricAdminAdjustTotal.Add(1)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
