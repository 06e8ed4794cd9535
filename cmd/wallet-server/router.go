package main

import (
	"casino-wallet/internal/app/wallet"
	"casino-wallet/internal/config"
	"casino-wallet/internal/notify"
	"casino-wallet/internal/stream"
	httptransport "casino-wallet/internal/transport/http"

	"github.com/go-chi/chi/v5"
)

func newRouter(svc *wallet.Service, health httptransport.Pinger, hub *notify.Hub, backlog *stream.Backlog, games httptransport.Catalog, cfg config.ServerConfig) *chi.Mux {
	return httptransport.NewRouter(httptransport.Deps{
		Wallet:  svc,
		Health:  health,
		Hub:     hub,
		Backlog: backlog,
		Games:   games,
	}, cfg)
}

func logRoutes(r chi.Router) {
	httptransport.LogRoutes(r)
}
