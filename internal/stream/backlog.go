package stream

import (
	"sync"

	"casino-wallet/internal/notify"
)

// Backlog remembers the latest events per player so reconnecting SSE clients
// can resume from Last-Event-ID. It registers with the hub as a global
// observer and never refuses an event.
type Backlog struct {
	mu         sync.Mutex
	perPlayer  int
	maxPlayers int
	events     map[string][]notify.BalanceChanged
	order      []string
}

func NewBacklog(perPlayer, maxPlayers int) *Backlog {
	if perPlayer <= 0 {
		perPlayer = 100
	}
	if maxPlayers <= 0 {
		maxPlayers = 10000
	}
	return &Backlog{
		perPlayer:  perPlayer,
		maxPlayers: maxPlayers,
		events:     map[string][]notify.BalanceChanged{},
	}
}

func (b *Backlog) Send(ev notify.BalanceChanged) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	list, seen := b.events[ev.PlayerID]
	if !seen {
		b.order = append(b.order, ev.PlayerID)
		if len(b.order) > b.maxPlayers {
			oldest := b.order[0]
			b.order = b.order[1:]
			delete(b.events, oldest)
		}
	}
	list = append(list, ev)
	if len(list) > b.perPlayer {
		list = list[len(list)-b.perPlayer:]
	}
	b.events[ev.PlayerID] = list
	return true
}

func (b *Backlog) Close() {}

// ReplayAfter returns the player's events with a version above after, oldest
// first.
func (b *Backlog) ReplayAfter(playerID string, after int64) []notify.BalanceChanged {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.events[playerID]
	out := make([]notify.BalanceChanged, 0, len(list))
	for _, ev := range list {
		if ev.Version > after {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Backlog) Latest(playerID string) (notify.BalanceChanged, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.events[playerID]
	if len(list) == 0 {
		return notify.BalanceChanged{}, false
	}
	return list[len(list)-1], true
}
