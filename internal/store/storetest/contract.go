// Package storetest holds the behavioral suite every store implementation
// must pass.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordparty/internal/store"
)

const waitFor = 2 * time.Second

// ContractSuite exercises the store.Store contract.
// Embed it and set NewStore in SetupTest.
type ContractSuite struct {
	suite.Suite
	Store store.Store
	Ctx   context.Context
}

// Recorder collects the snapshots delivered to a subscription
type Recorder struct {
	mu    sync.Mutex
	snaps []store.Snapshot
}

// Handle is a store.Handler
func (r *Recorder) Handle(snap store.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

// Values returns the delivered values in order
func (r *Recorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.Value()
	}
	return out
}

// Len returns the number of deliveries
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (s *ContractSuite) subscribe(path string) (*Recorder, *store.Subscription) {
	rec := &Recorder{}
	sub, err := s.Store.Subscribe(s.Ctx, path, rec.Handle)
	s.Require().NoError(err)
	s.T().Cleanup(sub.Release)
	return rec, sub
}

func (s *ContractSuite) awaitLen(rec *Recorder, n int) {
	s.Require().Eventually(func() bool { return rec.Len() >= n }, waitFor, 5*time.Millisecond)
}

func (s *ContractSuite) TestGetMissing() {
	snap, err := s.Store.Get(s.Ctx, "parties/NOPE42")
	s.Require().NoError(err)
	s.False(snap.Exists())
	s.Equal("parties/NOPE42", snap.Path())
}

func (s *ContractSuite) TestSetAndGetTree() {
	err := s.Store.Set(s.Ctx, "parties/ABC234", map[string]any{
		"host":   "u1",
		"round":  3,
		"status": "lobby",
		"players": map[string]any{
			"u1": map[string]any{"name": "Alice", "done": false},
		},
	})
	s.Require().NoError(err)

	snap, err := s.Store.Get(s.Ctx, "parties/ABC234")
	s.Require().NoError(err)
	s.Equal("u1", snap.Child("host").String())
	s.Equal(int64(3), snap.Child("round").Int())
	s.Equal([]string{"host", "players", "round", "status"}, snap.Keys())

	player, err := s.Store.Get(s.Ctx, "parties/ABC234/players/u1")
	s.Require().NoError(err)
	s.Equal(map[string]any{"name": "Alice", "done": false}, player.Value())
}

func (s *ContractSuite) TestSetReplacesSubtree() {
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/players", map[string]any{
		"u1": map[string]any{"name": "Alice"},
		"u2": map[string]any{"name": "Bob"},
	}))
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/players", map[string]any{
		"u2": map[string]any{"name": "Bob"},
	}))

	snap, err := s.Store.Get(s.Ctx, "parties/ABC234/players")
	s.Require().NoError(err)
	s.Equal([]string{"u2"}, snap.Keys())
}

func (s *ContractSuite) TestScalarReplacedByTree() {
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/typing", "CR"))
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/typing", map[string]any{"u1": "CRA"}))

	snap, err := s.Store.Get(s.Ctx, "parties/ABC234/typing")
	s.Require().NoError(err)
	s.Equal(map[string]any{"u1": "CRA"}, snap.Value())
}

func (s *ContractSuite) TestEmptyMapDeletes() {
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/round", 1))
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/round", map[string]any{}))

	snap, err := s.Store.Get(s.Ctx, "parties/ABC234/round")
	s.Require().NoError(err)
	s.False(snap.Exists())
}

func (s *ContractSuite) TestRemove() {
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234", map[string]any{"host": "u1", "round": 0}))
	s.Require().NoError(s.Store.Remove(s.Ctx, "parties/ABC234/host"))

	snap, err := s.Store.Get(s.Ctx, "parties/ABC234")
	s.Require().NoError(err)
	s.Equal(map[string]any{"round": int64(0)}, snap.Value())

	s.Require().NoError(s.Store.Remove(s.Ctx, "parties/ABC234"))
	snap, err = s.Store.Get(s.Ctx, "parties/ABC234")
	s.Require().NoError(err)
	s.False(snap.Exists())
}

func (s *ContractSuite) TestUpdateAppliesAllWrites() {
	err := s.Store.Update(s.Ctx, map[string]any{
		"parties/ABC234/status":     "playing",
		"parties/ABC234/round":      store.IncrementBy(1),
		"parties/ABC234/players/u1": map[string]any{"name": "Alice"},
		"parties/XYZ789/status":     "lobby",
	})
	s.Require().NoError(err)

	snap, err := s.Store.Get(s.Ctx, "parties/ABC234")
	s.Require().NoError(err)
	s.Equal("playing", snap.Child("status").String())
	s.Equal(int64(1), snap.Child("round").Int())
	s.Equal("Alice", snap.Child("players").Child("u1").Child("name").String())

	other, err := s.Store.Get(s.Ctx, "parties/XYZ789/status")
	s.Require().NoError(err)
	s.Equal("lobby", other.String())
}

func (s *ContractSuite) TestUpdateRejectsOverlap() {
	err := s.Store.Update(s.Ctx, map[string]any{
		"parties/ABC234":        map[string]any{"host": "u1"},
		"parties/ABC234/status": "lobby",
	})
	s.ErrorIs(err, store.ErrInvalidPath)

	snap, err := s.Store.Get(s.Ctx, "parties/ABC234")
	s.Require().NoError(err)
	s.False(snap.Exists())
}

func (s *ContractSuite) TestInvalidPathsAndValues() {
	s.ErrorIs(s.Store.Set(s.Ctx, "parties//x", "v"), store.ErrInvalidPath)
	s.ErrorIs(s.Store.Set(s.Ctx, "parties/a.b", "v"), store.ErrInvalidPath)
	s.ErrorIs(s.Store.Set(s.Ctx, "parties/ABC234/x", 1.5), store.ErrInvalidValue)
	s.ErrorIs(s.Store.Set(s.Ctx, "parties/ABC234/x", []string{"a"}), store.ErrInvalidValue)
}

func (s *ContractSuite) TestIncrement() {
	s.Require().NoError(s.Store.Update(s.Ctx, map[string]any{"parties/ABC234/round": store.IncrementBy(2)}))
	s.Require().NoError(s.Store.Update(s.Ctx, map[string]any{"parties/ABC234/round": store.IncrementBy(3)}))

	snap, err := s.Store.Get(s.Ctx, "parties/ABC234/round")
	s.Require().NoError(err)
	s.Equal(int64(5), snap.Int())
}

func (s *ContractSuite) TestSubscribeDeliversCurrentValue() {
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "lobby"))

	rec, _ := s.subscribe("parties/ABC234/status")
	s.awaitLen(rec, 1)
	s.Equal([]any{"lobby"}, rec.Values())

	missing, _ := s.subscribe("parties/NOPE42/status")
	s.awaitLen(missing, 1)
	s.Equal([]any{nil}, missing.Values())
}

func (s *ContractSuite) TestSubscribeSeesWritesInOrder() {
	rec, _ := s.subscribe("parties/ABC234/status")
	s.awaitLen(rec, 1)

	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "lobby"))
	s.awaitLen(rec, 2)
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "choosing"))
	s.awaitLen(rec, 3)
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "playing"))
	s.awaitLen(rec, 4)

	s.Equal([]any{nil, "lobby", "choosing", "playing"}, rec.Values())
}

func (s *ContractSuite) TestSubscribeSkipsUnchangedWrites() {
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "lobby"))
	rec, _ := s.subscribe("parties/ABC234/status")
	s.awaitLen(rec, 1)

	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "lobby"))
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/host", "u1"))
	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "playing"))
	s.awaitLen(rec, 2)

	s.Equal([]any{"lobby", "playing"}, rec.Values())
}

func (s *ContractSuite) TestSubscribeSeesAncestorAndDescendantWrites() {
	players, _ := s.subscribe("parties/ABC234/players")
	s.awaitLen(players, 1)

	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/players/u1/name", "Alice"))
	s.awaitLen(players, 2)

	s.Require().NoError(s.Store.Remove(s.Ctx, "parties/ABC234"))
	s.awaitLen(players, 3)

	s.Equal([]any{
		nil,
		map[string]any{"u1": map[string]any{"name": "Alice"}},
		nil,
	}, players.Values())
}

func (s *ContractSuite) TestReleaseStopsDelivery() {
	rec, sub := s.subscribe("parties/ABC234/status")
	s.awaitLen(rec, 1)

	sub.Release()
	sub.Release()
	s.False(sub.Active())

	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "lobby"))

	// A later subscriber observing the write bounds the wait
	after, _ := s.subscribe("parties/ABC234/status")
	s.awaitLen(after, 1)
	s.Equal([]any{"lobby"}, after.Values())
	s.Equal(1, rec.Len())
}

func (s *ContractSuite) TestHandlerMayWrite() {
	var once sync.Once
	rec := &Recorder{}
	sub, err := s.Store.Subscribe(s.Ctx, "parties/ABC234/status", func(snap store.Snapshot) {
		rec.Handle(snap)
		if snap.String() == "lobby" {
			once.Do(func() {
				_ = s.Store.Set(context.Background(), "parties/ABC234/status", "choosing")
			})
		}
	})
	s.Require().NoError(err)
	s.T().Cleanup(sub.Release)

	s.Require().NoError(s.Store.Set(s.Ctx, "parties/ABC234/status", "lobby"))
	s.awaitLen(rec, 3)
	s.Equal([]any{nil, "lobby", "choosing"}, rec.Values())
}
