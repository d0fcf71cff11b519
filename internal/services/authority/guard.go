package authority

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/store"
)

// Guard is a store bound to one identity that refuses writes the
// authority rules do not allow. Reads and subscriptions pass through.
type Guard struct {
	base store.Store
	uid  model.PlayerID
}

// NewGuard wraps base for the given identity
func NewGuard(base store.Store, uid model.PlayerID) *Guard {
	return &Guard{base: base, uid: uid}
}

// Ensure Guard implements the interface
var _ store.Store = (*Guard)(nil)

// UID returns the identity the guard writes as
func (g *Guard) UID() model.PlayerID {
	return g.uid
}

func (g *Guard) Get(ctx context.Context, path string) (store.Snapshot, error) {
	return g.base.Get(ctx, path)
}

func (g *Guard) Subscribe(ctx context.Context, path string, h store.Handler) (*store.Subscription, error) {
	return g.base.Subscribe(ctx, path, h)
}

func (g *Guard) Set(ctx context.Context, path string, value any) error {
	return g.Update(ctx, map[string]any{path: value})
}

func (g *Guard) Remove(ctx context.Context, path string) error {
	return g.Update(ctx, map[string]any{path: nil})
}

// Update checks every path before writing any of them
func (g *Guard) Update(ctx context.Context, updates map[string]any) error {
	parties := make(map[string]PartyState)
	for path, value := range updates {
		if _, err := store.Split(path); err != nil {
			return err
		}
		v := value
		if _, incr := value.(store.Increment); !incr {
			n, err := store.Normalize(value)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			v = n
		}

		state := PartyState{}
		if code, ok := partyOf(path); ok {
			cached, seen := parties[code]
			if !seen {
				var err error
				cached, err = g.partyState(ctx, code)
				if err != nil {
					return err
				}
				parties[code] = cached
			}
			state = cached
		}
		if err := Allow(g.uid, state, path, v); err != nil {
			return err
		}
	}
	return g.base.Update(ctx, updates)
}

func (g *Guard) partyState(ctx context.Context, code string) (PartyState, error) {
	snap, err := g.base.Get(ctx, model.PartyField(model.PartyCode(code), model.FieldHost))
	if err != nil {
		return PartyState{}, err
	}
	if !snap.Exists() {
		return PartyState{}, nil
	}
	return PartyState{Exists: true, Host: model.PlayerID(snap.String())}, nil
}

func partyOf(path string) (string, bool) {
	segs := strings.SplitN(path, "/", 3)
	if len(segs) < 2 || segs[0] != model.PartiesRoot {
		return "", false
	}
	return segs[1], true
}
