package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"casino-wallet/internal/config"
	"casino-wallet/internal/httpclient"
	"casino-wallet/internal/session"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestStartSessionSendsBetWithToken(t *testing.T) {
	var got struct {
		method, path, auth string
		body               map[string]any
	}
	hc := httpclient.NewWithTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got.method = req.Method
		got.path = req.URL.Path
		got.auth = req.Header.Get("Authorization")
		if err := json.NewDecoder(req.Body).Decode(&got.body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return response(http.StatusOK, `{"sessionId":"s-9","url":"https://play.local/s-9"}`), nil
	}))
	c := newWithHTTP(config.GameAPIConfig{BaseURL: "http://games.local/", Token: "secret"}, hc)

	h, err := c.StartSession(context.Background(), session.StartRequest{PlayerID: "p1", GameID: "slots", Bet: 150, Ref: "bet-1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if h.ID != "s-9" || h.URL != "https://play.local/s-9" {
		t.Fatalf("unexpected handle: %+v", h)
	}
	if got.method != http.MethodPost || got.path != "/sessions" || got.auth != "Bearer secret" {
		t.Fatalf("unexpected request %s %s auth=%q", got.method, got.path, got.auth)
	}
	if got.body["userId"] != "p1" || got.body["gameId"] != "slots" || got.body["bet"] != float64(1.5) || got.body["ref"] != "bet-1" {
		t.Fatalf("unexpected body: %v", got.body)
	}
}

func TestBetUnits(t *testing.T) {
	cases := map[int64]string{1: "0.01", 150: "1.5", 2500: "25", 99999: "999.99"}
	for minor, want := range cases {
		if got := betUnits(minor); string(got) != want {
			t.Errorf("betUnits(%d) = %s, want %s", minor, got, want)
		}
	}
}

func TestStartSessionRejectsEmptyID(t *testing.T) {
	hc := httpclient.NewWithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return response(http.StatusOK, `{}`), nil
	}))
	c := newWithHTTP(config.GameAPIConfig{BaseURL: "http://games.local"}, hc)

	if _, err := c.StartSession(context.Background(), session.StartRequest{PlayerID: "p1", GameID: "g", Bet: 1}); !errors.Is(err, errEmptySession) {
		t.Fatalf("error = %v, want errEmptySession", err)
	}
}

func TestCancelSession(t *testing.T) {
	var method, path string
	hc := httpclient.NewWithTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		method, path = req.Method, req.URL.Path
		return response(http.StatusNoContent, ""), nil
	}))
	c := newWithHTTP(config.GameAPIConfig{BaseURL: "http://games.local"}, hc)

	if err := c.CancelSession(context.Background(), "s-9"); err != nil {
		t.Fatalf("CancelSession() error = %v", err)
	}
	if method != http.MethodDelete || path != "/sessions/s-9" {
		t.Fatalf("unexpected request %s %s", method, path)
	}
}

func TestClientSatisfiesOrchestratorContracts(t *testing.T) {
	var c any = New(config.GameAPIConfig{BaseURL: "http://games.local", TimeoutMS: 100})
	if _, ok := c.(session.Starter); !ok {
		t.Fatal("client should implement session.Starter")
	}
	if _, ok := c.(session.Canceler); !ok {
		t.Fatal("client should implement session.Canceler")
	}
}
