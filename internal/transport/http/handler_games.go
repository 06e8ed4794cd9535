package httptransport

import (
	"context"
	"net/http"

	"casino-wallet/internal/gameapi"

	"github.com/rs/zerolog/log"
)

// Catalog lists the games a player can start a session for.
type Catalog interface {
	ListGames(ctx context.Context) ([]gameapi.Game, error)
}

type GameHandlers struct {
	catalog Catalog
}

func NewGameHandlers(catalog Catalog) *GameHandlers {
	return &GameHandlers{catalog: catalog}
}

func (h *GameHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := h.catalog.ListGames(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("game catalog fetch failed")
			WriteHTTPError(w, http.StatusBadGateway, "game_catalog_unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"games": games})
	}
}
