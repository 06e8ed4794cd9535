// Package gameapi talks to the third-party game provider that hosts sessions.
package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"casino-wallet/internal/config"
	"casino-wallet/internal/httpclient"
	"casino-wallet/internal/session"

	"github.com/shopspring/decimal"
)

type Client struct {
	http    *httpclient.Client
	baseURL string
	token   string
	catalog *catalogCache
}

func New(cfg config.GameAPIConfig) *Client {
	return newWithHTTP(cfg, httpclient.New(time.Duration(cfg.TimeoutMS)*time.Millisecond))
}

func newWithHTTP(cfg config.GameAPIConfig, hc *httpclient.Client) *Client {
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		catalog: newCatalogCache(time.Duration(cfg.CatalogTTLS) * time.Second),
	}
}

type startSessionRequest struct {
	UserID string      `json:"userId"`
	GameID string      `json:"gameId"`
	Bet    json.Number `json:"bet"`
	Ref    string      `json:"ref,omitempty"`
}

type startSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

var errEmptySession = errors.New("provider returned no session id")

func (c *Client) StartSession(ctx context.Context, req session.StartRequest) (session.Handle, error) {
	var resp startSessionResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/sessions", c.headers(), startSessionRequest{
		UserID: req.PlayerID,
		GameID: req.GameID,
		Bet:    betUnits(req.Bet),
		Ref:    req.Ref,
	}, &resp)
	if err != nil {
		return session.Handle{}, err
	}
	if resp.SessionID == "" {
		return session.Handle{}, errEmptySession
	}
	return session.Handle{ID: resp.SessionID, URL: resp.URL}, nil
}

// betUnits renders a bet held in minor units as the provider's currency
// amount, e.g. 150 becomes 1.5.
func betUnits(minor int64) json.Number {
	return json.Number(decimal.New(minor, -2).String())
}

func (c *Client) CancelSession(ctx context.Context, sessionID string) error {
	endpoint := c.baseURL + "/sessions/" + url.PathEscape(sessionID)
	return c.http.Do(ctx, http.MethodDelete, endpoint, c.headers(), nil, nil)
}

func (c *Client) headers() map[string]string {
	if c.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.token}
}
