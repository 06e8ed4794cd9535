package notify

import (
	"sync"
	"testing"
)

type recordingConn struct {
	mu     sync.Mutex
	cap    int
	events []BalanceChanged
	closed int
}

func (c *recordingConn) Send(ev BalanceChanged) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cap > 0 && len(c.events) >= c.cap {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (c *recordingConn) Close() {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
}

func (c *recordingConn) snapshot() ([]BalanceChanged, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]BalanceChanged, len(c.events))
	copy(out, c.events)
	return out, c.closed
}

func TestRegisterIsIdempotentPerConn(t *testing.T) {
	hub := NewHub()
	conn := &recordingConn{}

	h1 := hub.Register(conn, "p1")
	h2 := hub.Register(conn, "p1")
	if h1 != h2 {
		t.Fatalf("expected same handle, got %d and %d", h1, h2)
	}
	if hub.Len() != 1 {
		t.Fatalf("observers = %d, want 1", hub.Len())
	}

	hub.Publish(BalanceChanged{PlayerID: "p1", Balance: 10, Version: 1})
	events, _ := conn.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected one delivery, got %d", len(events))
	}
}

func TestUnregisterIsSafeToRepeat(t *testing.T) {
	hub := NewHub()
	conn := &recordingConn{}
	h := hub.Register(conn, "p1")

	hub.Unregister(h)
	hub.Unregister(h)
	hub.Unregister(Handle(999))

	hub.Publish(BalanceChanged{PlayerID: "p1", Balance: 10, Version: 1})
	events, _ := conn.snapshot()
	if len(events) != 0 {
		t.Fatalf("unregistered observer received %d events", len(events))
	}
	if hub.Len() != 0 {
		t.Fatalf("observers = %d, want 0", hub.Len())
	}
}

func TestPublishIsScopedToPlayer(t *testing.T) {
	hub := NewHub()
	alice := &recordingConn{}
	bob := &recordingConn{}
	operator := &recordingConn{}
	hub.Register(alice, "alice")
	hub.Register(bob, "bob")
	hub.Register(operator, "")

	hub.Publish(BalanceChanged{PlayerID: "alice", Balance: 5, Version: 1})
	hub.Publish(BalanceChanged{PlayerID: "bob", Balance: 7, Version: 1})

	aliceEvents, _ := alice.snapshot()
	bobEvents, _ := bob.snapshot()
	opEvents, _ := operator.snapshot()
	if len(aliceEvents) != 1 || aliceEvents[0].PlayerID != "alice" {
		t.Fatalf("alice got %+v", aliceEvents)
	}
	if len(bobEvents) != 1 || bobEvents[0].PlayerID != "bob" {
		t.Fatalf("bob got %+v", bobEvents)
	}
	if len(opEvents) != 2 {
		t.Fatalf("global observer got %d events, want 2", len(opEvents))
	}
}

func TestSlowObserverIsDroppedAndClosed(t *testing.T) {
	hub := NewHub()
	slow := &recordingConn{cap: 1}
	fast := &recordingConn{}
	hub.Register(slow, "p1")
	hub.Register(fast, "p1")

	for v := int64(1); v <= 3; v++ {
		hub.Publish(BalanceChanged{PlayerID: "p1", Balance: v * 10, Version: v})
	}

	slowEvents, closed := slow.snapshot()
	if len(slowEvents) != 1 || closed != 1 {
		t.Fatalf("slow observer: events=%d closed=%d", len(slowEvents), closed)
	}
	fastEvents, _ := fast.snapshot()
	if len(fastEvents) != 3 {
		t.Fatalf("fast observer got %d events, want 3", len(fastEvents))
	}
	if hub.Len() != 1 {
		t.Fatalf("observers = %d, want 1", hub.Len())
	}
}

func TestPublishPreservesOrderPerObserver(t *testing.T) {
	hub := NewHub()
	conn := &recordingConn{}
	hub.Register(conn, "p1")

	for v := int64(1); v <= 100; v++ {
		hub.Publish(BalanceChanged{PlayerID: "p1", Version: v})
	}
	events, _ := conn.snapshot()
	for i, ev := range events {
		if ev.Version != int64(i+1) {
			t.Fatalf("event %d has version %d", i, ev.Version)
		}
	}
}

func TestConcurrentRegisterPublish(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			conn := NewChanConn(4)
			h := hub.Register(conn, "p1")
			hub.Unregister(h)
		}()
		go func(v int64) {
			defer wg.Done()
			hub.Publish(BalanceChanged{PlayerID: "p1", Version: v})
		}(int64(i))
	}
	wg.Wait()
	if hub.Len() != 0 {
		t.Fatalf("observers = %d, want 0", hub.Len())
	}
}

func TestChanConnReportsWouldBlock(t *testing.T) {
	conn := NewChanConn(1)
	if !conn.Send(BalanceChanged{Version: 1}) {
		t.Fatal("first send should fit the buffer")
	}
	if conn.Send(BalanceChanged{Version: 2}) {
		t.Fatal("second send should report would-block")
	}
	conn.Close()
	conn.Close()
	if conn.Send(BalanceChanged{Version: 3}) {
		t.Fatal("send after close should fail")
	}
	ev, ok := <-conn.C
	if !ok || ev.Version != 1 {
		t.Fatalf("expected buffered event, got %+v ok=%v", ev, ok)
	}
	if _, ok := <-conn.C; ok {
		t.Fatal("channel should be closed")
	}
}

func TestMultiSkipsNil(t *testing.T) {
	var got []string
	n := Multi(
		NotifierFunc(func(ev BalanceChanged) { got = append(got, "a:"+ev.PlayerID) }),
		nil,
		NotifierFunc(func(ev BalanceChanged) { got = append(got, "b:"+ev.PlayerID) }),
	)
	n.Notify(BalanceChanged{PlayerID: "p1"})
	if len(got) != 2 || got[0] != "a:p1" || got[1] != "b:p1" {
		t.Fatalf("unexpected fan-out: %v", got)
	}
}
