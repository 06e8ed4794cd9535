package ledger

import (
	"sync"
	"time"

	"casino-wallet/internal/notify"

	"github.com/rs/zerolog/log"
)

const (
	sequenceWindow = 256
	sequenceIdle   = 5 * time.Minute
)

type release int

const (
	// releasePublish delivers the event unless it carries a transient
	// negative balance left by an in-flight overdraft check.
	releasePublish release = iota
	// releaseIfMoved delivers a compensation only when it changes the last
	// balance observers were shown.
	releaseIfMoved
	// releaseHidden consumes the version without delivering anything.
	releaseHidden
)

type pendingEvent struct {
	ev   notify.BalanceChanged
	mode release
}

type playerSeq struct {
	// next is 0 until the first release fixes the starting version.
	next      int64
	inflight  int
	pending   map[int64]pendingEvent
	shown     bool
	lastShown int64
	touched   time.Time
}

// sequencer releases balance events in store version order. Every store
// write that may consume a version is announced with begin and settled with
// exactly one push or abandon. While writes are in flight, events wait for
// the lower versions those writes may still carry. Once none are in flight
// every committed version from this process has been pushed, so the gaps
// left belong to other processes or to failed writes and are skipped.
type sequencer struct {
	mu        sync.Mutex
	deliver   func(notify.BalanceChanged)
	players   map[string]*playerSeq
	now       func() time.Time
	lastSweep time.Time
}

func newSequencer(deliver func(notify.BalanceChanged)) *sequencer {
	return &sequencer{
		deliver: deliver,
		players: map[string]*playerSeq{},
		now:     time.Now,
	}
}

func (s *sequencer) begin(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.player(playerID)
	ps.inflight++
}

func (s *sequencer) push(playerID string, version int64, ev notify.BalanceChanged, mode release) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.player(playerID)
	s.settle(ps)
	if ps.next != 0 && version < ps.next {
		metricNotifyLate.Add(1)
		log.Warn().Str("player_id", playerID).Int64("version", version).Int64("next", ps.next).
			Msg("balance event arrived after its slot was skipped")
	} else {
		ps.pending[version] = pendingEvent{ev: ev, mode: mode}
	}
	s.release(ps)
	s.sweep()
}

// abandon settles a write that failed without a known version.
func (s *sequencer) abandon(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.player(playerID)
	s.settle(ps)
	s.release(ps)
	s.sweep()
}

func (s *sequencer) player(playerID string) *playerSeq {
	ps := s.players[playerID]
	if ps == nil {
		ps = &playerSeq{pending: map[int64]pendingEvent{}}
		s.players[playerID] = ps
	}
	ps.touched = s.now()
	return ps
}

func (s *sequencer) settle(ps *playerSeq) {
	if ps.inflight > 0 {
		ps.inflight--
	}
}

func (s *sequencer) release(ps *playerSeq) {
	if len(ps.pending) == 0 {
		return
	}
	if ps.next == 0 {
		if ps.inflight > 0 && len(ps.pending) <= sequenceWindow {
			return
		}
		ps.next = lowest(ps.pending)
	}
	s.drain(ps)
	for len(ps.pending) > 0 && (ps.inflight == 0 || len(ps.pending) > sequenceWindow) {
		ps.next = lowest(ps.pending)
		s.drain(ps)
	}
}

// sweep forgets players with nothing pending or in flight that have been idle
// for sequenceIdle. A forgotten player starts over with next unset, which is
// safe because all of its earlier versions were already released.
func (s *sequencer) sweep() {
	now := s.now()
	if now.Sub(s.lastSweep) < sequenceIdle {
		return
	}
	s.lastSweep = now
	for id, ps := range s.players {
		if ps.inflight == 0 && len(ps.pending) == 0 && now.Sub(ps.touched) >= sequenceIdle {
			delete(s.players, id)
		}
	}
}

func (s *sequencer) drain(ps *playerSeq) {
	for {
		p, ok := ps.pending[ps.next]
		if !ok {
			return
		}
		delete(ps.pending, ps.next)
		ps.next++

		switch p.mode {
		case releaseHidden:
			continue
		case releaseIfMoved:
			if ps.shown && p.ev.Balance == ps.lastShown {
				continue
			}
		}
		if p.ev.Balance < 0 {
			continue
		}
		s.deliver(p.ev)
		ps.shown = true
		ps.lastShown = p.ev.Balance
	}
}

func lowest(pending map[int64]pendingEvent) int64 {
	first := true
	var low int64
	for v := range pending {
		if first || v < low {
			low = v
			first = false
		}
	}
	return low
}
