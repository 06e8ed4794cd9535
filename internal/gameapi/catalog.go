package gameapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Game is one entry of the provider's catalog. Bet limits are in currency
// units.
type Game struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MinBet      decimal.Decimal `json:"minBet"`
	MaxBet      decimal.Decimal `json:"maxBet"`
	Category    string          `json:"category,omitempty"`
}

type catalogCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	games   []Game
	fetched time.Time
}

func newCatalogCache(ttl time.Duration) *catalogCache {
	return &catalogCache{ttl: ttl, now: time.Now}
}

func (c *catalogCache) fresh() ([]Game, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.games == nil || c.ttl <= 0 || c.now().Sub(c.fetched) >= c.ttl {
		return nil, false
	}
	return c.games, true
}

func (c *catalogCache) stale() []Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.games
}

func (c *catalogCache) store(games []Game) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games = games
	c.fetched = c.now()
}

// ListGames returns the provider's catalog, cached for the configured TTL.
// When a refresh fails and an earlier copy exists, the earlier copy is served.
func (c *Client) ListGames(ctx context.Context) ([]Game, error) {
	if games, ok := c.catalog.fresh(); ok {
		return games, nil
	}
	v, err, _ := c.catalog.group.Do("games", func() (any, error) {
		if games, ok := c.catalog.fresh(); ok {
			return games, nil
		}
		var games []Game
		if err := c.http.Do(ctx, http.MethodGet, c.baseURL+"/games", c.headers(), nil, &games); err != nil {
			return nil, err
		}
		if games == nil {
			games = []Game{}
		}
		c.catalog.store(games)
		return games, nil
	})
	if err != nil {
		if games := c.catalog.stale(); games != nil {
			log.Warn().Err(err).Int("games", len(games)).Msg("game catalog refresh failed; serving cached copy")
			return games, nil
		}
		return nil, err
	}
	return v.([]Game), nil
}
