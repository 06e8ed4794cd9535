// Package ws pushes balance updates to WebSocket clients.
package ws

import (
	"encoding/json"
	"expvar"
	"net/http"
	"strings"
	"time"

	"casino-wallet/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	metricWSConnectionsActive = expvar.NewInt("ws_connections_active")
	metricWSConnectionsTotal  = expvar.NewInt("ws_connections_total")
)

const sendBuffer = 16

// Client is one WebSocket observer. Its event queue is bounded; the hub drops
// the client when the queue is full.
type Client struct {
	conn     *websocket.Conn
	events   *notify.ChanConn
	playerID string
}

func (c *Client) Send(ev notify.BalanceChanged) bool { return c.events.Send(ev) }

func (c *Client) Close() { c.events.Close() }

type Server struct {
	hub         *notify.Hub
	upgrader    websocket.Upgrader
	allowGlobal bool
}

// NewServer builds the handler. With allowGlobal, a connection without a
// player_id observes every player.
func NewServer(hub *notify.Hub, allowGlobal bool) *Server {
	return &Server{
		hub:         hub,
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		allowGlobal: allowGlobal,
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))
	if playerID == "" && !s.allowGlobal {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_request"}`))
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, events: notify.NewChanConn(sendBuffer), playerID: playerID}
	handle := s.hub.Register(client, playerID)
	metricWSConnectionsTotal.Add(1)
	metricWSConnectionsActive.Add(1)
	log.Debug().Str("player_id", playerID).Msg("ws observer connected")

	go s.writeLoop(client)
	s.readLoop(client)

	s.hub.Unregister(handle)
	client.Close()
	metricWSConnectionsActive.Add(-1)
}

// readLoop only drains control frames; clients send nothing we act on.
func (s *Server) readLoop(c *Client) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	if err := s.writeJSON(c, SubscribedMessage{Type: "subscribed", ProtocolVersion: ProtocolVersion, PlayerID: c.playerID}); err != nil {
		return
	}
	for {
		select {
		case ev, ok := <-c.events.C:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			if err := s.writeJSON(c, NewBalanceUpdate(ev)); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeJSON(c *Client, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}
