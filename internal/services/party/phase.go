package party

import (
	"errors"
	"slices"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/board"
	"github.com/mcoot/wordparty/internal/store"
)

// nextPhases lists the status values a client in each phase acts on.
// A watcher may miss intermediate values, so some entries skip a step.
var nextPhases = map[model.Status][]model.Status{
	model.StatusLobby:    {model.StatusChoosing, model.StatusPlaying},
	model.StatusChoosing: {model.StatusPlaying, model.StatusLobby},
	model.StatusPlaying:  {model.StatusResults, model.StatusLobby, model.StatusChoosing},
	model.StatusResults:  {model.StatusPlaying, model.StatusChoosing, model.StatusLobby},
}

// armWatchLocked replaces the phase watch. The watch fires on status, round
// and setter index changes and is released by the first transition it acts on.
func (s *Session) armWatchLocked() error {
	if s.watchScope != nil {
		s.watchScope.Release()
	}
	scope := store.NewScope()
	s.watchScope = scope

	for _, field := range []string{model.FieldStatus, model.FieldRound, model.FieldWordSetterIndex} {
		err := s.subscribeLocked(scope, model.PartyField(s.code, field), func(store.Snapshot) {
			s.onWatchLocked(scope)
		})
		if err != nil {
			scope.Release()
			return err
		}
	}
	return nil
}

func (s *Session) onWatchLocked(scope *store.Scope) {
	p, err := s.fetchParty(s.ctx, s.code)
	if errors.Is(err, model.ErrPartyNotFound) {
		s.closePartyLocked()
		return
	}
	if err != nil {
		s.reportLocked(err)
		return
	}
	if p.Players[s.uid] == nil {
		s.closePartyLocked()
		return
	}
	if !s.acceptsLocked(p) {
		return
	}

	scope.Release()
	switch p.Status {
	case model.StatusLobby:
		s.enterLobbyLocked(p)
	case model.StatusChoosing:
		s.enterChoosingLocked(p)
	case model.StatusPlaying:
		s.enterPlayingLocked(p)
	case model.StatusResults:
		s.enterResultsLocked(p)
	}
	if err := s.armWatchLocked(); err != nil {
		s.reportLocked(err)
	}
}

// acceptsLocked reports whether p is a new phase for this client.
// Redelivered and stale values are not.
func (s *Session) acceptsLocked(p *model.Party) bool {
	if p.Status == model.StatusPlaying && p.Round <= s.round {
		return false
	}
	if p.Status == s.phase {
		switch p.Status {
		case model.StatusPlaying:
			return true
		case model.StatusChoosing:
			return p.WordSetterIndex != s.setterIndex
		}
		return false
	}
	return slices.Contains(nextPhases[s.phase], p.Status)
}

func (s *Session) closePartyLocked() {
	s.logger.Info("party closed")
	s.emitLocked(model.EventPartyClosed, nil)
	s.resetLocked()
}

// endRoundLocked tears down host round subscriptions and local round state
func (s *Session) endRoundLocked() {
	if s.relayScope != nil {
		s.relayScope.Release()
	}
	if s.barrierScope != nil {
		s.barrierScope.Release()
	}
	s.clearRoundLocked()
}

func (s *Session) changePhaseLocked(to model.Status) {
	from := s.phase
	s.phase = to
	if from != to {
		s.emitLocked(model.EventPhaseChanged, model.PhaseChangedPayload{From: from, To: to})
	}
}

func (s *Session) enterLobbyLocked(p *model.Party) {
	s.endRoundLocked()
	s.mode = p.GameMode
	s.changePhaseLocked(model.StatusLobby)
}

func (s *Session) enterChoosingLocked(p *model.Party) {
	s.endRoundLocked()
	s.mode = model.ModeCustom
	s.setterIndex = p.WordSetterIndex
	s.setterID = p.Setter()
	s.isSetter = s.setterID == s.uid
	s.changePhaseLocked(model.StatusChoosing)

	setter := p.Players[s.setterID]
	if s.isSetter {
		s.emitLocked(model.EventWordRequested, nil)
	} else if setter != nil {
		s.emitLocked(model.EventAwaitingWord, model.AwaitingWordPayload{SetterID: setter.ID, SetterName: setter.Name})
	}

	if !s.isHost {
		return
	}
	if setter == nil {
		s.skipDepartedSetterLocked()
		return
	}
	if !s.isSetter {
		if err := s.armRelayLocked(s.setterID); err != nil {
			s.reportLocked(err)
		}
	}
}

func (s *Session) enterPlayingLocked(p *model.Party) {
	s.endRoundLocked()

	s.round = p.Round
	s.mode = p.GameMode
	s.target = p.TargetWord
	s.isSetter = p.Players[s.uid].IsWordSetter
	if p.GameMode == model.ModeCustom {
		s.setterIndex = p.WordSetterIndex
		s.setterID = p.Setter()
	}
	if !s.isSetter {
		s.board = board.New(s.target, s.dict, board.Config{
			MaxGuesses: s.cfg.MaxGuesses,
			HardMode:   s.cfg.HardMode,
		})
	}

	s.changePhaseLocked(model.StatusPlaying)
	s.emitLocked(model.EventRoundStarted, model.RoundStartedPayload{
		Round:        s.round,
		Mode:         s.mode,
		WordLength:   len(s.target),
		IsWordSetter: s.isSetter,
		SetterID:     s.setterID,
		HardMode:     s.cfg.HardMode,
	})

	if s.isHost {
		if err := s.armBarrierLocked(); err != nil {
			s.reportLocked(err)
		}
	}
}

func (s *Session) enterResultsLocked(p *model.Party) {
	if s.barrierScope != nil {
		s.barrierScope.Release()
	}
	s.round = p.Round
	s.target = p.TargetWord
	s.changePhaseLocked(model.StatusResults)
	s.emitLocked(model.EventRoundResults, model.RoundResultsPayload{
		Round:      p.Round,
		TargetWord: p.TargetWord,
		Standings:  Rank(p.Players),
	})
}
