package store

import (
	"sync"
	"sync/atomic"
)

// Subscription is a handle on a registered Handler. Release stops delivery;
// once it returns no further notification is started for this subscription.
type Subscription struct {
	active  atomic.Bool
	once    sync.Once
	release func()
}

// NewSubscription creates an active subscription whose release runs cleanup once
func NewSubscription(cleanup func()) *Subscription {
	s := &Subscription{release: cleanup}
	s.active.Store(true)
	return s
}

// Active reports whether the subscription still delivers notifications
func (s *Subscription) Active() bool {
	return s.active.Load()
}

// Release unregisters the handler. It is safe to call more than once and
// from inside the handler itself.
func (s *Subscription) Release() {
	s.once.Do(func() {
		s.active.Store(false)
		if s.release != nil {
			s.release()
		}
	})
}

// Scope groups subscriptions that share a lifetime, such as one game phase.
// Releasing the scope releases everything in it; subscriptions added after
// release are released immediately.
type Scope struct {
	mu       sync.Mutex
	subs     []*Subscription
	released bool
}

// NewScope creates an empty scope
func NewScope() *Scope {
	return &Scope{}
}

// Add ties sub to the scope's lifetime
func (sc *Scope) Add(sub *Subscription) {
	sc.mu.Lock()
	if sc.released {
		sc.mu.Unlock()
		sub.Release()
		return
	}
	sc.subs = append(sc.subs, sub)
	sc.mu.Unlock()
}

// Release releases every subscription in the scope
func (sc *Scope) Release() {
	sc.mu.Lock()
	subs := sc.subs
	sc.subs = nil
	sc.released = true
	sc.mu.Unlock()
	for _, sub := range subs {
		sub.Release()
	}
}

// Released reports whether Release has been called
func (sc *Scope) Released() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.released
}

// Len returns the number of live subscriptions held
func (sc *Scope) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.subs)
}
