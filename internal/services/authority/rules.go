// Package authority enforces who may write which part of a party record.
package authority

import (
	"fmt"
	"strings"

	"github.com/mcoot/wordparty/internal/model"
)

// PartyState is what the rules need to know about the party a write targets
type PartyState struct {
	Exists bool
	Host   model.PlayerID
}

// Allow decides whether uid may write value at path.
// A nil value is a delete.
func Allow(uid model.PlayerID, party PartyState, path string, value any) error {
	segs := strings.Split(path, "/")
	if len(segs) < 2 || segs[0] != model.PartiesRoot {
		return deny(uid, path, "outside party records")
	}
	isHost := party.Exists && party.Host == uid

	switch {
	case len(segs) == 2 && value == nil:
		if !isHost {
			return deny(uid, path, "only the host may delete the party")
		}
		return nil

	case len(segs) == 2:
		if party.Exists {
			return deny(uid, path, "party already exists")
		}
		return allowCreate(uid, path, value)

	case segs[2] == model.FieldPlayers && len(segs) >= 4:
		if !party.Exists {
			return deny(uid, path, "party does not exist")
		}
		if model.PlayerID(segs[3]) != uid && !isHost {
			return deny(uid, path, "another player's record")
		}
		return nil
	}

	if !isHost {
		return deny(uid, path, "host only")
	}
	return nil
}

func allowCreate(uid model.PlayerID, path string, value any) error {
	tree, ok := value.(map[string]any)
	if !ok {
		return deny(uid, path, "party must be a record")
	}
	if host, _ := tree[model.FieldHost].(string); model.PlayerID(host) != uid {
		return deny(uid, path, "creator must be the host")
	}
	players, _ := tree[model.FieldPlayers].(map[string]any)
	if _, ok := players[string(uid)]; !ok {
		return deny(uid, path, "creator must be a player")
	}
	return nil
}

func deny(uid model.PlayerID, path, reason string) error {
	return fmt.Errorf("%w: %s writing %s: %s", model.ErrPermissionDenied, uid, path, reason)
}
