package notify

import "sync"

// ChanConn is a Conn backed by a bounded channel. Transports drain C and
// stop when it is closed.
type ChanConn struct {
	C    chan BalanceChanged
	once sync.Once
	mu   sync.RWMutex
	done bool
}

func NewChanConn(buffer int) *ChanConn {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChanConn{C: make(chan BalanceChanged, buffer)}
}

func (c *ChanConn) Send(ev BalanceChanged) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.done {
		return false
	}
	select {
	case c.C <- ev:
		return true
	default:
		return false
	}
}

func (c *ChanConn) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.done = true
		close(c.C)
		c.mu.Unlock()
	})
}
