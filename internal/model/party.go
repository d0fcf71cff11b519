package model

import "sort"

// PartyCode is the short human-readable identifier used to join a party
type PartyCode string

// PlayerID is the stable identity of a client, issued by the identity provider
type PlayerID string

// Status is the lifecycle phase of a party
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusChoosing Status = "choosing" // custom mode: waiting for the word setter
	StatusPlaying  Status = "playing"
	StatusResults  Status = "results"
)

// Valid reports whether s is one of the four lifecycle phases
func (s Status) Valid() bool {
	switch s {
	case StatusLobby, StatusChoosing, StatusPlaying, StatusResults:
		return true
	}
	return false
}

// GameMode selects how the target word is chosen
type GameMode string

const (
	ModeClassic GameMode = "classic" // random word from the answer list
	ModeCustom  GameMode = "custom"  // a rotating player chooses the word
)

// Valid reports whether m is a known game mode
func (m GameMode) Valid() bool {
	return m == ModeClassic || m == ModeCustom
}

const (
	// CodeLength is the length of generated party codes
	CodeLength = 6
	// CodeAlphabet is the characters used in party codes (no 0/O, 1/I)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// WordLength is the fixed length of target words and guesses
	WordLength = 5
	// MaxNameLength is the maximum length of a sanitized player name
	MaxNameLength = 20
)

// Party is the shared record every client in a session reads and writes
type Party struct {
	Code            PartyCode
	HostID          PlayerID
	Status          Status
	GameMode        GameMode
	Round           int
	TargetWord      string
	WordSetterIndex int
	WordQueue       []PlayerID // index -> player, built once per custom game
	Players         map[PlayerID]*Player
}

// GetPlayer returns the player with the given ID, or nil if not present
func (p *Party) GetPlayer(id PlayerID) *Player {
	return p.Players[id]
}

// PlayerIDs returns all player IDs in a stable order
func (p *Party) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(p.Players))
	for id := range p.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Setter returns the designated word setter for the current custom round,
// or "" when there is no queue
func (p *Party) Setter() PlayerID {
	if len(p.WordQueue) == 0 || p.WordSetterIndex < 0 || p.WordSetterIndex >= len(p.WordQueue) {
		return ""
	}
	return p.WordQueue[p.WordSetterIndex]
}

// NextSetterIndex advances the setter index modulo the queue length,
// skipping queue entries for players who have since left
func (p *Party) NextSetterIndex() int {
	n := len(p.WordQueue)
	if n == 0 {
		return 0
	}
	for step := 1; step <= n; step++ {
		idx := (p.WordSetterIndex + step) % n
		if p.Players[p.WordQueue[idx]] != nil {
			return idx
		}
	}
	return (p.WordSetterIndex + 1) % n
}

// AllDone reports whether every player has finished the round.
// An empty roster never satisfies the barrier.
func (p *Party) AllDone() bool {
	return AllDone(p.Players)
}

// AllDone reports whether every player in the map is done
func AllDone(players map[PlayerID]*Player) bool {
	if len(players) == 0 {
		return false
	}
	for _, pl := range players {
		if !pl.Done {
			return false
		}
	}
	return true
}
