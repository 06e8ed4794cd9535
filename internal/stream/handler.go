package stream

import (
	"expvar"
	"net/http"
	"strconv"
	"time"

	"casino-wallet/internal/notify"

	"github.com/go-chi/chi/v5"
)

var (
	pingInterval = 15 * time.Second

	metricSSEConnectionsTotal  = expvar.NewInt("sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("sse_connections_active")
)

const connBuffer = 32

// EventsHandler streams one player's balance events. A Last-Event-ID header
// (the last version seen) replays what the client missed; without it the
// latest known event is sent first.
func EventsHandler(hub *notify.Hub, backlog *Backlog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "player_id")
		if playerID == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_request"}`))
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		conn := notify.NewChanConn(connBuffer)
		handle := hub.Register(conn, playerID)
		defer func() {
			hub.Unregister(handle)
			conn.Close()
		}()
		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		SetSSEHeaders(w)
		w.WriteHeader(http.StatusOK)

		var lastSent int64
		var replay []notify.BalanceChanged
		if v, err := strconv.ParseInt(r.Header.Get("Last-Event-ID"), 10, 64); err == nil {
			replay = backlog.ReplayAfter(playerID, v)
			lastSent = v
		} else if ev, ok := backlog.Latest(playerID); ok {
			replay = []notify.BalanceChanged{ev}
		}
		for _, ev := range replay {
			if err := WriteSSE(w, balanceEvent(ev)); err != nil {
				return
			}
			lastSent = ev.Version
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-conn.C:
				if !ok {
					return
				}
				if ev.Version <= lastSent {
					continue
				}
				if err := WriteSSE(w, balanceEvent(ev)); err != nil {
					return
				}
				lastSent = ev.Version
				flusher.Flush()
			case <-ticker.C:
				now := time.Now().UnixMilli()
				ping := StreamEvent{Event: "ping", PlayerID: playerID, ServerTS: now, Data: map[string]any{"ts": now}}
				if err := WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func balanceEvent(ev notify.BalanceChanged) StreamEvent {
	return StreamEvent{
		EventID:  strconv.FormatInt(ev.Version, 10),
		Event:    "balance_update",
		PlayerID: ev.PlayerID,
		ServerTS: time.Now().UnixMilli(),
		Data:     ev,
	}
}
