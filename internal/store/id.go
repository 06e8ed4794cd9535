package store

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var idSource = struct {
	sync.Mutex
	entropy io.Reader
}{
	entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
}

// NewID returns a ULID stamped with at. IDs minted in this process for the
// same millisecond still sort in creation order.
func NewID(at time.Time) string {
	idSource.Lock()
	defer idSource.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), idSource.entropy).String()
}
