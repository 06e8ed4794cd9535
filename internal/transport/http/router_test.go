package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appwallet "casino-wallet/internal/app/wallet"
	"casino-wallet/internal/config"
	"casino-wallet/internal/gameapi"
	"casino-wallet/internal/ledger"
	"casino-wallet/internal/notify"
	"casino-wallet/internal/session"
	"casino-wallet/internal/store/memstore"
	"casino-wallet/internal/stream"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type stubProvider struct {
	err error
}

func (p stubProvider) StartSession(_ context.Context, req session.StartRequest) (session.Handle, error) {
	if p.err != nil {
		return session.Handle{}, p.err
	}
	return session.Handle{ID: "sess-" + req.Ref, URL: "https://play.local/" + req.Ref}, nil
}

type stubCatalog struct {
	games []gameapi.Game
	err   error
}

func (c stubCatalog) ListGames(context.Context) ([]gameapi.Game, error) {
	return c.games, c.err
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("down") }

func newTestRouter(t *testing.T, provider session.Starter, health Pinger) (chi.Router, *ledger.Ledger) {
	t.Helper()
	hub := notify.NewHub()
	backlog := stream.NewBacklog(10, 100)
	hub.Register(backlog, "")
	l := ledger.New(memstore.New(), ledger.WithNotifier(hub))
	svc := appwallet.NewService(l, session.New(l, provider), 100000)
	r := NewRouter(Deps{Wallet: svc, Health: health, Hub: hub, Backlog: backlog}, config.ServerConfig{AdminAPIKey: "admin-key"})
	return r, l
}

func do(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

var admin = map[string]string{"X-Admin-Key": "admin-key"}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t, stubProvider{}, nil)
	if w := do(t, r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
	down, _ := newTestRouter(t, stubProvider{}, downPinger{})
	if w := do(t, down, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz with store down = %d", w.Code)
	}
}

func TestOpenAccountAndBetFlow(t *testing.T) {
	r, _ := newTestRouter(t, stubProvider{}, nil)

	w := do(t, r, http.MethodPost, "/api/players", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("open account = %d %s", w.Code, w.Body.String())
	}
	playerID, _ := decode(t, w)["player_id"].(string)

	w = do(t, r, http.MethodPost, "/api/players/"+playerID+"/bets", `{"game_id":"slots","bet":"25.00","ref":"r1"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("place bet = %d %s", w.Code, w.Body.String())
	}
	bet := decode(t, w)
	if bet["session_id"] != "sess-r1" || bet["balance"] != "975.00" {
		t.Fatalf("unexpected bet response: %v", bet)
	}

	w = do(t, r, http.MethodPost, "/api/players/"+playerID+"/bets", `{"game_id":"slots","bet":5000}`, nil)
	if w.Code != http.StatusConflict || decode(t, w)["error"] != "insufficient_balance" {
		t.Fatalf("oversized bet = %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/players/"+playerID+"/transactions?limit=5", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("transactions = %d", w.Code)
	}
	txs := decode(t, w)
	items, _ := txs["items"].([]any)
	if len(items) != 1 || txs["limit"] != float64(5) {
		t.Fatalf("unexpected transactions: %v", txs)
	}
}

func TestBetProviderFailureIsBadGateway(t *testing.T) {
	r, l := newTestRouter(t, stubProvider{err: errors.New("provider down")}, nil)
	if err := l.SetBalance(context.Background(), "p1", 1000); err != nil {
		t.Fatalf("SetBalance() error = %v", err)
	}
	w := do(t, r, http.MethodPost, "/api/players/p1/bets", `{"game_id":"slots","bet":"1"}`, nil)
	if w.Code != http.StatusBadGateway || decode(t, w)["error"] != "session_start_failed" {
		t.Fatalf("provider failure = %d", w.Code)
	}
	if bal, _ := l.GetBalance(context.Background(), "p1"); bal != 1000 {
		t.Fatalf("balance changed to %d after failed start", bal)
	}
}

func TestAdminEndpointsRequireKey(t *testing.T) {
	r, _ := newTestRouter(t, stubProvider{}, nil)

	if w := do(t, r, http.MethodPost, "/api/players/p1/credit", `{"amount":"10"}`, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("credit without key = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/debug/vars", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("debug vars without key = %d", w.Code)
	}

	w := do(t, r, http.MethodPost, "/api/players/p1/credit", `{"amount":"10.50"}`, admin)
	if w.Code != http.StatusOK || decode(t, w)["balance"] != "10.50" {
		t.Fatalf("credit = %d", w.Code)
	}
	w = do(t, r, http.MethodPost, "/api/players/p1/debit", `{"amount":"20"}`, admin)
	if w.Code != http.StatusConflict {
		t.Fatalf("overdraft debit = %d", w.Code)
	}
	w = do(t, r, http.MethodPost, "/api/players/p1/debit", `{"amount":"0.001"}`, admin)
	if w.Code != http.StatusBadRequest || decode(t, w)["error"] != "invalid_amount" {
		t.Fatalf("sub-cent debit = %d", w.Code)
	}
	w = do(t, r, http.MethodPut, "/api/players/p1/balance", `{"balance":"3"}`, map[string]string{"Authorization": "Bearer admin-key"})
	if w.Code != http.StatusOK || decode(t, w)["balance_minor"] != float64(300) {
		t.Fatalf("set balance = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/debug/vars", "", admin); w.Code != http.StatusOK {
		t.Fatalf("debug vars = %d", w.Code)
	}
}

func TestGameCatalogRoute(t *testing.T) {
	hub := notify.NewHub()
	l := ledger.New(memstore.New())
	svc := appwallet.NewService(l, session.New(l, stubProvider{}), 100000)
	deps := Deps{Wallet: svc, Hub: hub, Backlog: stream.NewBacklog(10, 100)}

	if w := do(t, NewRouter(deps, config.ServerConfig{}), http.MethodGet, "/api/games", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("games without catalog = %d, want 404", w.Code)
	}

	deps.Games = stubCatalog{games: []gameapi.Game{{ID: "slots", Name: "Lucky Slots", MinBet: decimal.New(50, -2), MaxBet: decimal.New(100, 0)}}}
	w := do(t, NewRouter(deps, config.ServerConfig{}), http.MethodGet, "/api/games", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("games = %d %s", w.Code, w.Body.String())
	}
	games, _ := decode(t, w)["games"].([]any)
	if len(games) != 1 {
		t.Fatalf("unexpected games: %v", games)
	}
	first, _ := games[0].(map[string]any)
	if first["id"] != "slots" || first["minBet"] != "0.5" {
		t.Fatalf("unexpected game: %v", first)
	}

	deps.Games = stubCatalog{err: errors.New("provider down")}
	w = do(t, NewRouter(deps, config.ServerConfig{}), http.MethodGet, "/api/games", "", nil)
	if w.Code != http.StatusBadGateway || decode(t, w)["error"] != "game_catalog_unavailable" {
		t.Fatalf("catalog failure = %d", w.Code)
	}
}

func TestErrorResponsesAreJSON(t *testing.T) {
	r, _ := newTestRouter(t, stubProvider{}, nil)
	w := do(t, r, http.MethodPost, "/api/players/p1/bets", "{", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if decode(t, w)["error"] != "invalid_json" {
		t.Fatal("expected invalid_json")
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=5", 10, 5},
		{"?limit=0&offset=-3", 1, 0},
		{"?limit=9999", 500, 0},
		{"?limit=abc", 50, 0},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
		limit, offset := ParsePagination(req)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Fatalf("ParsePagination(%q) = %d,%d; want %d,%d", tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestMCPPreflightAndRouteListing(t *testing.T) {
	r, _ := newTestRouter(t, stubProvider{}, nil)
	w := do(t, r, http.MethodOptions, "/mcp", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("OPTIONS /mcp = %d", w.Code)
	}
	if w.Header().Get("Allow") == "" {
		t.Fatal("expected Allow header")
	}
	LogRoutes(r)
}
