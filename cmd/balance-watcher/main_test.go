package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"casino-wallet/internal/ws"

	"github.com/gorilla/websocket"
)

func TestWatchURL(t *testing.T) {
	got, err := watchURL("ws://localhost:8080/ws", "p 1")
	if err != nil {
		t.Fatalf("watchURL() error = %v", err)
	}
	if got != "ws://localhost:8080/ws?player_id=p+1" {
		t.Fatalf("watchURL() = %q", got)
	}
	got, _ = watchURL("ws://localhost:8080/ws", "")
	if got != "ws://localhost:8080/ws" {
		t.Fatalf("watchURL() without player = %q", got)
	}
}

func TestReadUpdatesSkipsOtherMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribed","protocol_version":"1.0"}`))
		_ = c.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"balance_update","player_id":"p1","balance":500,"version":3}`))
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var got []ws.BalanceUpdate
	err = readUpdates(conn, func(u ws.BalanceUpdate) { got = append(got, u) })
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("readUpdates() error = %v, want normal close", err)
	}
	if len(got) != 1 || got[0].PlayerID != "p1" || got[0].Version != 3 {
		t.Fatalf("unexpected updates: %+v", got)
	}
}
