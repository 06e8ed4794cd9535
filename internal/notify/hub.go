package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Conn is a push channel to one observer. Send must not block: it reports
// false when the event cannot be queued.
type Conn interface {
	Send(ev BalanceChanged) bool
	Close()
}

type Handle uint64

type subscription struct {
	handle   Handle
	conn     Conn
	playerID string
}

// Hub tracks live observers and fans balance events out to them. Observers
// are scoped to one player; an empty player ID watches every player.
type Hub struct {
	mu       sync.Mutex
	nextID   Handle
	subs     map[Handle]*subscription
	byConn   map[Conn]Handle
	byPlayer map[string]map[Handle]*subscription
}

func NewHub() *Hub {
	return &Hub{
		subs:     map[Handle]*subscription{},
		byConn:   map[Conn]Handle{},
		byPlayer: map[string]map[Handle]*subscription{},
	}
}

// Register adds conn as an observer of playerID. Registering the same conn
// again returns its existing handle unchanged.
func (h *Hub) Register(conn Conn, playerID string) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	if handle, ok := h.byConn[conn]; ok {
		return handle
	}
	h.nextID++
	sub := &subscription{handle: h.nextID, conn: conn, playerID: playerID}
	h.subs[sub.handle] = sub
	h.byConn[conn] = sub.handle
	if h.byPlayer[playerID] == nil {
		h.byPlayer[playerID] = map[Handle]*subscription{}
	}
	h.byPlayer[playerID][sub.handle] = sub
	metricHubObservers.Add(1)
	return sub.handle
}

func (h *Hub) Unregister(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(handle)
}

// Publish delivers ev to the player's observers and to global observers.
// Observers that cannot take the event are dropped and closed. Calls are
// serialized, so concurrent publishers never reorder events on one Conn.
func (h *Hub) Publish(ev BalanceChanged) {
	var dropped []Conn
	h.mu.Lock()
	for _, scope := range []string{ev.PlayerID, ""} {
		for handle, sub := range h.byPlayer[scope] {
			if sub.conn.Send(ev) {
				continue
			}
			h.removeLocked(handle)
			dropped = append(dropped, sub.conn)
		}
		if ev.PlayerID == "" {
			break
		}
	}
	h.mu.Unlock()
	metricHubPublished.Add(1)

	for _, conn := range dropped {
		metricHubDropped.Add(1)
		log.Debug().Str("player_id", ev.PlayerID).Msg("observer dropped: send would block")
		conn.Close()
	}
}

func (h *Hub) Notify(ev BalanceChanged) { h.Publish(ev) }

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) removeLocked(handle Handle) {
	sub, ok := h.subs[handle]
	if !ok {
		return
	}
	delete(h.subs, handle)
	delete(h.byConn, sub.conn)
	if scoped := h.byPlayer[sub.playerID]; scoped != nil {
		delete(scoped, handle)
		if len(scoped) == 0 {
			delete(h.byPlayer, sub.playerID)
		}
	}
	metricHubObservers.Add(-1)
}
