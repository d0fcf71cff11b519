package party

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/store"
)

// recorder is an Observer that keeps every event
type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) Notify(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(t model.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) last(t model.EventType) (model.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return model.Event{}, false
}

// typingOf returns a player's typing letters from the last roster event
func typingOf(t *testing.T, r *recorder, id model.PlayerID) string {
	t.Helper()
	ev, ok := r.last(model.EventPlayersChanged)
	require.True(t, ok)
	for _, p := range ev.Payload.(model.PlayersChangedPayload).Players {
		if p.ID == id {
			return p.Typing
		}
	}
	require.Failf(t, "player missing", "no %s in roster", id)
	return ""
}

// settle runs every session's event loop until none has anything left to do
func settle(sessions ...*Session) {
	for {
		var before, after uint64
		for _, s := range sessions {
			before += s.Loop().Processed()
		}
		for _, s := range sessions {
			s.Loop().Flush()
		}
		for _, s := range sessions {
			after += s.Loop().Processed()
		}
		if before == after {
			return
		}
	}
}

// duplicatingStore delivers every notification twice
type duplicatingStore struct {
	store.Store
}

func (d duplicatingStore) Subscribe(ctx context.Context, path string, h store.Handler) (*store.Subscription, error) {
	return d.Store.Subscribe(ctx, path, func(snap store.Snapshot) {
		h(snap)
		h(snap)
	})
}

var errStoreDown = errors.New("store down")

// failingStore fails writes once broken is set
type failingStore struct {
	store.Store
	broken atomic.Bool
}

func (f *failingStore) Update(ctx context.Context, updates map[string]any) error {
	if f.broken.Load() {
		return errStoreDown
	}
	return f.Store.Update(ctx, updates)
}

func (f *failingStore) Set(ctx context.Context, path string, value any) error {
	return f.Update(ctx, map[string]any{path: value})
}

func (f *failingStore) Remove(ctx context.Context, path string) error {
	return f.Update(ctx, map[string]any{path: nil})
}
