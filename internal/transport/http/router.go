package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appwallet "casino-wallet/internal/app/wallet"
	"casino-wallet/internal/config"
	"casino-wallet/internal/mcpserver"
	"casino-wallet/internal/notify"
	"casino-wallet/internal/stream"
	"casino-wallet/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Deps struct {
	Wallet  *appwallet.Service
	Health  Pinger
	Hub     *notify.Hub
	Backlog *stream.Backlog
	// Games is optional; /api/games is mounted only when set.
	Games Catalog
}

func NewRouter(deps Deps, cfg config.ServerConfig) *chi.Mux {
	mcpSrv := mcpserver.New(deps.Wallet)
	wsSrv := ws.NewServer(deps.Hub, cfg.WSAllowGlobal)

	playerHandlers := NewPlayerHandlers(deps.Wallet)
	adminHandlers := NewAdminHandlers(deps.Wallet, deps.Health)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	// The upgrade needs the raw ResponseWriter, so no access log wrapper here.
	r.Get("/ws", wsSrv.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Post("/players", playerHandlers.Open())
		r.Get("/players/{player_id}/balance", playerHandlers.Balance())
		r.Get("/players/{player_id}/transactions", playerHandlers.Transactions())
		r.With(AuditBodyMiddleware(2048)).Post("/players/{player_id}/bets", playerHandlers.PlaceBet())
		r.Get("/players/{player_id}/events", stream.EventsHandler(deps.Hub, deps.Backlog))
		if deps.Games != nil {
			r.Get("/games", NewGameHandlers(deps.Games).List())
		}

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(AuditBodyMiddleware(2048))
				r.Post("/players/{player_id}/credit", adminHandlers.Credit())
				r.Post("/players/{player_id}/debit", adminHandlers.Debit())
				r.Put("/players/{player_id}/balance", adminHandlers.SetBalance())
			})
		})
	})

	log.Debug().Bool("ws_allow_global", cfg.WSAllowGlobal).Msg("router built")
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
