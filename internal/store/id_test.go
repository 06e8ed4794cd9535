package store

import (
	"testing"
	"time"
)

func TestNewIDSortsWithinSameMillisecond(t *testing.T) {
	at := time.Now()
	prev := NewID(at)
	for i := 0; i < 1000; i++ {
		next := NewID(at)
		if next <= prev {
			t.Fatalf("id %s not after %s", next, prev)
		}
		prev = next
	}
}
