package snapshot

import (
	"sync"
	"time"

	"atr-trader/internal/types"
)

// State is the synchronization point between the producer loops and the
// decision loop. Both snapshots and their freshness flags live under one
// mutex, so a reader can never observe a new market snapshot paired with a
// half-written account snapshot. Wakeup uses a size-1 notify channel with a
// non-blocking send: publishing twice before the consumer wakes is fine, the
// consumer always reads the latest values.
type State struct {
	mu         sync.Mutex
	market     types.MarketSnapshot
	account    types.AccountSnapshot
	hasMarket  bool
	hasAccount bool

	notify chan struct{}
	done   chan struct{}
	closed bool
}

func New() *State {
	return &State{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// PublishMarket overwrites the market snapshot and wakes the consumer.
// Must never be called while holding other locks or blocking on I/O.
func (s *State) PublishMarket(snap types.MarketSnapshot) {
	s.mu.Lock()
	s.market = snap
	s.hasMarket = true
	s.mu.Unlock()
	s.wake()
}

// PublishAccount overwrites the account snapshot and wakes the consumer.
func (s *State) PublishAccount(snap types.AccountSnapshot) {
	s.mu.Lock()
	s.account = snap
	s.hasAccount = true
	s.mu.Unlock()
	s.wake()
}

// AwaitFreshMarket blocks until an unconsumed market snapshot and at least
// one account snapshot are available, the timeout elapses, or the state is
// closed. On success the market freshness flag is cleared; the account flag
// is not, since account data is re-read every cycle even when its producer
// has not polled again yet.
func (s *State) AwaitFreshMarket(timeout time.Duration) (types.MarketSnapshot, types.AccountSnapshot, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if m, a, ok := s.tryConsume(); ok {
			return m, a, true
		}
		select {
		case <-s.notify:
		case <-deadline.C:
			return types.MarketSnapshot{}, types.AccountSnapshot{}, false
		case <-s.done:
			return types.MarketSnapshot{}, types.AccountSnapshot{}, false
		}
	}
}

// LatestAccount returns the most recent account snapshot without consuming
// anything.
func (s *State) LatestAccount() (types.AccountSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account, s.hasAccount
}

// Close wakes all waiters and makes every future wait return immediately.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

// Running reports whether the state has not been closed yet. Loops check it
// at every iteration head so shutdown latency stays bounded.
func (s *State) Running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Done exposes the shutdown channel for select loops.
func (s *State) Done() <-chan struct{} {
	return s.done
}

func (s *State) tryConsume() (types.MarketSnapshot, types.AccountSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.hasMarket || !s.hasAccount {
		return types.MarketSnapshot{}, types.AccountSnapshot{}, false
	}
	s.hasMarket = false
	return s.market, s.account, true
}

func (s *State) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
