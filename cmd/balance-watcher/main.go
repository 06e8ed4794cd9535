package main

import (
	"encoding/json"
	"net/url"
	"os"
	"os/signal"

	"casino-wallet/internal/app/wallet"
	"casino-wallet/internal/config"
	"casino-wallet/internal/logging"
	"casino-wallet/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadWatcher()
	if err != nil {
		log.Fatal().Err(err).Msg("load watcher config failed")
	}

	target, err := watchURL(cfg.WSURL, cfg.PlayerID)
	if err != nil {
		log.Fatal().Err(err).Str("ws_url", cfg.WSURL).Msg("bad ws url")
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		log.Fatal().Err(err).Str("ws_url", target).Msg("dial failed")
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	err = readUpdates(conn, func(u ws.BalanceUpdate) {
		log.Info().
			Str("player_id", u.PlayerID).
			Int64("version", u.Version).
			Str("kind", string(u.Kind)).
			Str("amount", wallet.FormatMinor(u.Amount)).
			Str("balance", wallet.FormatMinor(u.Balance)).
			Str("ref", u.Ref).
			Msg("balance update")
	})
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		log.Error().Err(err).Msg("watch ended")
	}
}

func watchURL(base, playerID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if playerID != "" {
		q := u.Query()
		q.Set("player_id", playerID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// readUpdates blocks until the connection fails, handing every balance
// update to fn. Other message types are logged and skipped.
func readUpdates(conn *websocket.Conn, fn func(ws.BalanceUpdate)) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		if base.Type != "balance_update" {
			log.Debug().Str("type", base.Type).Msg("skipping message")
			continue
		}
		var u ws.BalanceUpdate
		if err := json.Unmarshal(data, &u); err != nil {
			continue
		}
		fn(u)
	}
}
