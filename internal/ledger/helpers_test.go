package ledger

import (
	"context"
	"errors"
	"sync"

	"casino-wallet/internal/notify"
	"casino-wallet/internal/store"
	"casino-wallet/internal/store/memstore"
	"casino-wallet/internal/store/mysqlstore"
	"casino-wallet/internal/store/redisstore"
)

var (
	_ Store = (*store.Store)(nil)
	_ Store = (*memstore.Store)(nil)
	_ Store = (*redisstore.Store)(nil)
	_ Store = (*mysqlstore.Store)(nil)
)

var errStoreDown = errors.New("connection refused")

// faultyStore wraps the memory store with switchable failures.
type faultyStore struct {
	*memstore.Store

	mu           sync.Mutex
	getFails     int
	readFails    int
	writeErr     error
	appendErr    error
	blockWrites  bool
	blockAppends bool
	writeCalls   int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memstore.New()}
}

func (f *faultyStore) Get(ctx context.Context, playerID string) (store.Balance, bool, error) {
	f.mu.Lock()
	if f.getFails > 0 {
		f.getFails--
		f.mu.Unlock()
		return store.Balance{}, false, errStoreDown
	}
	f.mu.Unlock()
	return f.Store.Get(ctx, playerID)
}

func (f *faultyStore) ReadAll(ctx context.Context, playerID string) ([]store.Transaction, error) {
	f.mu.Lock()
	if f.readFails > 0 {
		f.readFails--
		f.mu.Unlock()
		return nil, errStoreDown
	}
	f.mu.Unlock()
	return f.Store.ReadAll(ctx, playerID)
}

func (f *faultyStore) IncrAndAppend(ctx context.Context, tx store.Transaction) (store.Balance, error) {
	if err := f.beforeWrite(ctx); err != nil {
		return store.Balance{}, err
	}
	return f.Store.IncrAndAppend(ctx, tx)
}

func (f *faultyStore) Incr(ctx context.Context, playerID string, delta int64) (store.Balance, error) {
	if err := f.beforeWrite(ctx); err != nil {
		return store.Balance{}, err
	}
	return f.Store.Incr(ctx, playerID, delta)
}

func (f *faultyStore) Append(ctx context.Context, tx store.Transaction) error {
	f.mu.Lock()
	err, block := f.appendErr, f.blockAppends
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return f.Store.Append(ctx, tx)
}

func (f *faultyStore) beforeWrite(ctx context.Context) error {
	f.mu.Lock()
	f.writeCalls++
	err, block := f.writeErr, f.blockWrites
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *faultyStore) set(fn func(f *faultyStore)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []notify.BalanceChanged
}

func (r *recorder) Notify(ev notify.BalanceChanged) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) all() []notify.BalanceChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.BalanceChanged, len(r.events))
	copy(out, r.events)
	return out
}

var strategies = []Strategy{StrategyOptimistic, StrategyLocked}

// gateStore parks the first IncrAndAppend of gateAmount after it commits, so
// a later write can finish first.
type gateStore struct {
	*memstore.Store

	gateAmount int64
	once       sync.Once
	entered    chan struct{}
	hold       chan struct{}
}

func newGateStore(amount int64) *gateStore {
	return &gateStore{
		Store:      memstore.New(),
		gateAmount: amount,
		entered:    make(chan struct{}),
		hold:       make(chan struct{}),
	}
}

func (g *gateStore) IncrAndAppend(ctx context.Context, tx store.Transaction) (store.Balance, error) {
	bal, err := g.Store.IncrAndAppend(ctx, tx)
	if tx.Amount == g.gateAmount {
		g.once.Do(func() {
			close(g.entered)
			<-g.hold
		})
	}
	return bal, err
}
