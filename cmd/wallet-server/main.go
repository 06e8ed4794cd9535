package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casino-wallet/internal/app/wallet"
	"casino-wallet/internal/config"
	"casino-wallet/internal/eventpush"
	"casino-wallet/internal/gameapi"
	"casino-wallet/internal/ledger"
	"casino-wallet/internal/logging"
	"casino-wallet/internal/notify"
	"casino-wallet/internal/session"
	"casino-wallet/internal/stream"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Server.StoreDriver).Msg("store init failed")
	}
	defer st.close()

	pushCfg, err := eventpush.ConfigFromPush(cfg.Push)
	if err != nil {
		log.Fatal().Err(err).Msg("event push config invalid")
	}
	pusher := eventpush.NewManager(pushCfg)
	if err := pusher.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("event push start failed")
	}

	hub := notify.NewHub()
	backlog := stream.NewBacklog(cfg.Server.BacklogPerPlayer, cfg.Server.BacklogPlayers)
	hub.Register(backlog, "")

	led, err := newLedger(st.store, cfg.Server, notify.Multi(hub, pusher))
	if err != nil {
		log.Fatal().Err(err).Msg("ledger init failed")
	}
	games := gameapi.New(cfg.GameAPI)
	bets := session.New(led, games)
	svc := wallet.NewService(led, bets, cfg.Server.InitialBalance)

	r := newRouter(svc, st.health, hub, backlog, games, cfg.Server)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.Server.HTTPAddr).
		Str("store", cfg.Server.StoreDriver).
		Str("debit_strategy", string(led.Strategy())).
		Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func newLedger(st ledger.Store, cfg config.ServerConfig, n notify.Notifier) (*ledger.Ledger, error) {
	strategy, err := ledger.ParseStrategy(cfg.DebitStrategy)
	if err != nil {
		return nil, err
	}
	return ledger.New(st,
		ledger.WithNotifier(n),
		ledger.WithStrategy(strategy),
		ledger.WithOpTimeout(time.Duration(cfg.LedgerOpTimeoutMS)*time.Millisecond),
		ledger.WithReadRetry(cfg.ReadRetryAttempts, time.Duration(cfg.ReadRetryBaseMS)*time.Millisecond),
	), nil
}
