// Package party runs one client's side of a multiplayer party: the phase
// state machine, the host's relay and round barrier, and the writes each
// player makes to its own record.
package party

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/wordparty/internal/dependencies/clock"
	"github.com/mcoot/wordparty/internal/dependencies/eventloop"
	"github.com/mcoot/wordparty/internal/dependencies/random"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/authority"
	"github.com/mcoot/wordparty/internal/services/board"
	"github.com/mcoot/wordparty/internal/services/dictionary"
	"github.com/mcoot/wordparty/internal/store"
)

// Observer receives render instructions from a session. Events are delivered
// in order on the session's event loop with no session lock held, so an
// observer may call back into the session. It must not call Close.
type Observer interface {
	Notify(ev model.Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ev model.Event)

func (f ObserverFunc) Notify(ev model.Event) { f(ev) }

// Config holds per-session game settings
type Config struct {
	HardMode     bool
	MaxGuesses   int
	CodeAttempts int
}

// DefaultConfig returns default session settings
func DefaultConfig() Config {
	return Config{
		MaxGuesses:   board.DefaultConfig().MaxGuesses,
		CodeAttempts: 5,
	}
}

// Session is one client's membership of a party.
//
// Public operations and store notification handlers share one mutex.
// Notifications are posted to the session's event loop, so they run one at a
// time and never inside a store call made by an operation.
type Session struct {
	store    store.Store
	dict     *dictionary.Service
	random   random.Random
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config
	uid      model.PlayerID
	loop     *eventloop.Loop
	observer Observer

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending []model.Event
	closed  bool

	code        model.PartyCode
	name        string
	hostID      model.PlayerID
	isHost      bool
	phase       model.Status
	round       int
	mode        model.GameMode
	target      string
	setterIndex int
	setterID    model.PlayerID
	isSetter    bool
	board       *board.Board
	roster      string

	// Released on leave or when the party closes
	partyScope *store.Scope
	// The one-shot watch for the current phase
	watchScope *store.Scope
	// Host only: relay of the setter's proposal while choosing
	relayScope *store.Scope
	// Host only: the all-done check while playing
	barrierScope *store.Scope

	failedProposal string
	resultsRound   int
}

// New creates a session acting as uid. Writes go through the authority guard.
func New(
	base store.Store,
	uid model.PlayerID,
	dict *dictionary.Service,
	rnd random.Random,
	clk clock.Clock,
	cfg Config,
	observer Observer,
	logger *slog.Logger,
) *Session {
	if cfg.MaxGuesses <= 0 {
		cfg.MaxGuesses = DefaultConfig().MaxGuesses
	}
	if cfg.CodeAttempts <= 0 {
		cfg.CodeAttempts = DefaultConfig().CodeAttempts
	}
	if observer == nil {
		observer = ObserverFunc(func(model.Event) {})
	}
	logger = logger.With(slog.String("component", "party"), slog.String("uid", string(uid)))
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		store:    authority.NewGuard(base, uid),
		dict:     dict,
		random:   rnd,
		clock:    clk,
		logger:   logger,
		cfg:      cfg,
		uid:      uid,
		loop:     eventloop.New(logger),
		observer: observer,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// UID returns the identity the session acts as
func (s *Session) UID() model.PlayerID {
	return s.uid
}

// Loop returns the session's event loop
func (s *Session) Loop() *eventloop.Loop {
	return s.loop
}

// Close releases every subscription and stops the event loop without
// touching the party record
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.releaseAllLocked()
	s.mu.Unlock()

	s.cancel()
	s.loop.Close()
}

// unlock releases the session lock and hands buffered events to the loop
func (s *Session) unlock() {
	events := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(events) == 0 {
		return
	}
	s.loop.Post(func() {
		for _, ev := range events {
			s.observer.Notify(ev)
		}
	})
}

func (s *Session) emitLocked(t model.EventType, payload any) {
	s.pending = append(s.pending, model.Event{
		Type:      t,
		Timestamp: s.clock.Now(),
		PartyCode: s.code,
		PlayerID:  s.uid,
		Payload:   payload,
	})
}

func (s *Session) reportLocked(err error) {
	s.logger.Warn("session error", slog.String("party", string(s.code)), slog.String("error", err.Error()))
	s.emitLocked(model.EventSessionError, model.SessionErrorPayload{Err: err})
}

// subscribeLocked subscribes within scope. The handler runs on the event
// loop with the session lock held, and only while scope is live.
func (s *Session) subscribeLocked(scope *store.Scope, path string, h func(store.Snapshot)) error {
	sub, err := s.store.Subscribe(s.ctx, path, func(snap store.Snapshot) {
		s.loop.Post(func() {
			s.mu.Lock()
			defer s.unlock()
			if scope.Released() || s.closed {
				return
			}
			h(snap)
		})
	})
	if err != nil {
		return err
	}
	scope.Add(sub)
	return nil
}

func (s *Session) requireParty() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.code == "" {
		return model.ErrNotInParty
	}
	return nil
}

func (s *Session) requireHost() error {
	if err := s.requireParty(); err != nil {
		return err
	}
	if !s.isHost {
		return model.ErrNotHost
	}
	return nil
}

func (s *Session) requirePhase(allowed ...model.Status) error {
	for _, p := range allowed {
		if s.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", model.ErrWrongPhase, s.phase)
}

// fetchParty reads and validates the whole party record
func (s *Session) fetchParty(ctx context.Context, code model.PartyCode) (*model.Party, error) {
	snap, err := s.store.Get(ctx, model.PartyPath(code))
	if err != nil {
		return nil, err
	}
	if !snap.Exists() {
		return nil, model.ErrPartyNotFound
	}
	return model.DecodeParty(code, snap.Value())
}

func (s *Session) releaseAllLocked() {
	for _, sc := range []*store.Scope{s.barrierScope, s.relayScope, s.watchScope, s.partyScope} {
		if sc != nil {
			sc.Release()
		}
	}
}

// resetLocked forgets the party entirely
func (s *Session) resetLocked() {
	s.releaseAllLocked()
	s.code = ""
	s.name = ""
	s.hostID = ""
	s.isHost = false
	s.phase = ""
	s.round = 0
	s.mode = ""
	s.roster = ""
	s.resultsRound = 0
	s.clearRoundLocked()
}

// clearRoundLocked drops local round state
func (s *Session) clearRoundLocked() {
	s.target = ""
	s.setterIndex = 0
	s.setterID = ""
	s.isSetter = false
	s.board = nil
	s.failedProposal = ""
}

// ErrSessionClosed is returned by operations on a closed session
var ErrSessionClosed = errors.New("session closed")

// View is a read-only copy of a client's local state
type View struct {
	UID          model.PlayerID
	Code         model.PartyCode
	IsHost       bool
	Phase        model.Status
	Round        int
	Mode         model.GameMode
	IsWordSetter bool
	SetterID     model.PlayerID
	Rows         []model.Guess
	Remaining    int
	Finished     bool

	// Target is only revealed once the round is over for this client
	Target string
}

// Snapshot returns the client's local view
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		UID:          s.uid,
		Code:         s.code,
		IsHost:       s.isHost,
		Phase:        s.phase,
		Round:        s.round,
		Mode:         s.mode,
		IsWordSetter: s.isSetter,
		SetterID:     s.setterID,
	}
	if s.board != nil {
		v.Rows = s.board.Rows()
		v.Remaining = s.board.Remaining()
		v.Finished = s.board.Finished()
	}
	if s.phase == model.StatusResults || v.Finished || s.isSetter {
		v.Target = s.target
	}
	return v
}
