package model

import "time"

// EventType identifies the type of event delivered to the UI layer
type EventType string

const (
	// Session events
	EventPhaseChanged   EventType = "phase_changed"
	EventPlayersChanged EventType = "players_changed"
	EventPartyClosed    EventType = "party_closed"
	EventSessionError   EventType = "session_error"

	// Round events
	EventWordRequested EventType = "word_requested" // this client is the word setter
	EventAwaitingWord  EventType = "awaiting_word"  // someone else is choosing
	EventRoundStarted  EventType = "round_started"
	EventRoundResults  EventType = "round_results"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType
	Timestamp time.Time
	PartyCode PartyCode
	PlayerID  PlayerID // The local player the event was produced for
	Payload   any      // Type-specific data
}

// PhaseChangedPayload contains data for phase changed events
type PhaseChangedPayload struct {
	From Status
	To   Status
}

// PlayersChangedPayload contains the current roster, sorted by name
type PlayersChangedPayload struct {
	HostID  PlayerID
	Players []Player
}

// AwaitingWordPayload names the player currently choosing the word
type AwaitingWordPayload struct {
	SetterID   PlayerID
	SetterName string
}

// RoundStartedPayload contains data for round started events
type RoundStartedPayload struct {
	Round        int
	Mode         GameMode
	WordLength   int
	IsWordSetter bool
	SetterID     PlayerID // Empty in classic mode
	HardMode     bool
}

// RoundResultsPayload contains the ranked outcome of a round
type RoundResultsPayload struct {
	Round      int
	TargetWord string
	Standings  []Standing
}

// SessionErrorPayload carries a failure from an asynchronous handler
type SessionErrorPayload struct {
	Err error
}

// Standing is one ranked row of a round's results
type Standing struct {
	Rank         int
	PlayerID     PlayerID
	Name         string
	Won          bool
	GuessCount   int
	IsWordSetter bool
}
