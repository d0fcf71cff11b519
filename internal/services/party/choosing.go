package party

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/store"
)

// StartRound leaves the lobby. Classic mode picks a random word and starts
// playing. Custom mode builds a shuffled setter queue and waits for the
// first setter's word.
func (s *Session) StartRound(ctx context.Context, mode model.GameMode) error {
	s.mu.Lock()
	defer s.unlock()
	if err := s.requireHost(); err != nil {
		return err
	}
	if err := s.requirePhase(model.StatusLobby); err != nil {
		return err
	}
	if !mode.Valid() {
		return model.NewValidationError("mode", fmt.Sprintf("unknown game mode %q", mode))
	}

	p, err := s.fetchParty(ctx, s.code)
	if err != nil {
		return err
	}

	if mode == model.ModeClassic {
		return s.startClassicLocked(ctx, p)
	}

	if len(p.Players) < 2 {
		return model.ErrInsufficientPlayers
	}
	ids := p.PlayerIDs()
	queue := make([]model.PlayerID, len(ids))
	for i, j := range s.random.Perm(len(ids)) {
		queue[i] = ids[j]
	}

	updates := resetPlayers(s.code, ids, "")
	updates[model.PartyField(s.code, model.FieldGameMode)] = string(model.ModeCustom)
	updates[model.PartyField(s.code, model.FieldWordQueue)] = model.QueueTree(queue)
	updates[model.PartyField(s.code, model.FieldWordSetterIndex)] = 0
	updates[model.PartyField(s.code, model.FieldTargetWord)] = ""
	updates[model.StatusPath(s.code)] = string(model.StatusChoosing)

	if err := s.store.Update(ctx, updates); err != nil {
		return err
	}
	s.logger.Info("custom game started", slog.String("party", string(s.code)), slog.Int("players", len(ids)))
	return nil
}

func (s *Session) startClassicLocked(ctx context.Context, p *model.Party) error {
	target, err := s.dict.RandomAnswer(s.random)
	if err != nil {
		return err
	}

	updates := resetPlayers(s.code, p.PlayerIDs(), "")
	updates[model.PartyField(s.code, model.FieldGameMode)] = string(model.ModeClassic)
	updates[model.PartyField(s.code, model.FieldWordQueue)] = nil
	updates[model.PartyField(s.code, model.FieldWordSetterIndex)] = 0
	updates[model.PartyField(s.code, model.FieldTargetWord)] = target
	updates[model.PartyField(s.code, model.FieldRound)] = store.IncrementBy(1)
	updates[model.StatusPath(s.code)] = string(model.StatusPlaying)

	if err := s.store.Update(ctx, updates); err != nil {
		return err
	}
	s.logger.Info("classic round started", slog.String("party", string(s.code)), slog.Int("round", p.Round+1))
	return nil
}

// SubmitWord offers the word for a custom round. Only the current setter may
// call it. A non-host setter's word is relayed by the host.
func (s *Session) SubmitWord(ctx context.Context, raw string) error {
	word := model.NormalizeWord(raw)
	if !model.IsWordShape(word) {
		return model.NewValidationError("word", fmt.Sprintf("Word must be %d letters", model.WordLength))
	}
	if !s.dict.IsValidWord(word) {
		return model.NewValidationError("word", "Not in word list")
	}

	s.mu.Lock()
	defer s.unlock()
	if err := s.requireParty(); err != nil {
		return err
	}
	if err := s.requirePhase(model.StatusChoosing); err != nil {
		return err
	}

	// The local view of who sets the word may be stale
	p, err := s.fetchParty(ctx, s.code)
	if err != nil {
		return err
	}
	if p.Status != model.StatusChoosing {
		return fmt.Errorf("%w: %s", model.ErrWrongPhase, p.Status)
	}
	if p.Setter() != s.uid {
		return model.ErrRejoinRequired
	}

	if s.isHost {
		return s.store.Update(ctx, roundStartUpdate(p, s.uid, word))
	}
	return s.store.Set(ctx, model.PlayerField(s.code, s.uid, model.FieldProposedWord), word)
}

// armRelayLocked watches the setter's proposal on behalf of the party
func (s *Session) armRelayLocked(setter model.PlayerID) error {
	if s.relayScope != nil {
		s.relayScope.Release()
	}
	scope := store.NewScope()
	s.relayScope = scope
	return s.subscribeLocked(scope, model.PlayerField(s.code, setter, model.FieldProposedWord), func(snap store.Snapshot) {
		s.onProposalLocked(scope, setter, snap)
	})
}

func (s *Session) onProposalLocked(scope *store.Scope, setter model.PlayerID, snap store.Snapshot) {
	if s.phase != model.StatusChoosing || setter != s.setterID {
		return
	}
	word := model.NormalizeWord(snap.String())
	if word == "" || word == s.failedProposal {
		return
	}
	if !model.IsWordShape(word) {
		s.logger.Warn("ignoring malformed proposal",
			slog.String("setter", string(setter)),
			slog.String("word", word))
		return
	}

	// One relay per proposal, however often it is delivered
	scope.Release()

	p, err := s.fetchParty(s.ctx, s.code)
	if err == nil {
		if p.Status != model.StatusChoosing || p.Setter() != setter {
			return
		}
		err = s.store.Update(s.ctx, roundStartUpdate(p, setter, word))
	}
	if err != nil {
		s.failedProposal = word
		s.reportLocked(fmt.Errorf("relaying word from %s: %w", setter, err))
		if err := s.armRelayLocked(setter); err != nil {
			s.reportLocked(err)
		}
		return
	}
	s.logger.Info("relayed word", slog.String("party", string(s.code)), slog.String("setter", string(setter)))
}

// skipDepartedSetterLocked moves the setter index past a setter who left,
// or returns to the lobby when too few players remain
func (s *Session) skipDepartedSetterLocked() {
	p, err := s.fetchParty(s.ctx, s.code)
	if err != nil {
		s.reportLocked(err)
		return
	}
	if p.Status != model.StatusChoosing || p.Players[p.Setter()] != nil {
		return
	}

	if len(p.Players) < 2 {
		err = s.store.Update(s.ctx, lobbyUpdate(s.code, p.PlayerIDs()))
	} else {
		err = s.store.Set(s.ctx, model.PartyField(s.code, model.FieldWordSetterIndex), p.NextSetterIndex())
	}
	if err != nil {
		s.reportLocked(fmt.Errorf("skipping departed setter: %w", err))
	}
}

// roundStartUpdate is the single write that moves a custom round from
// choosing to playing
func roundStartUpdate(p *model.Party, setter model.PlayerID, word string) map[string]any {
	updates := resetPlayers(p.Code, p.PlayerIDs(), setter)
	updates[model.PartyField(p.Code, model.FieldTargetWord)] = word
	updates[model.PartyField(p.Code, model.FieldRound)] = store.IncrementBy(1)
	updates[model.StatusPath(p.Code)] = string(model.StatusPlaying)
	return updates
}

// resetPlayers clears every player's round fields. The setter, if any,
// starts the round done.
func resetPlayers(code model.PartyCode, ids []model.PlayerID, setter model.PlayerID) map[string]any {
	updates := make(map[string]any, len(ids)*7+4)
	for _, id := range ids {
		isSetter := id == setter
		updates[model.PlayerField(code, id, model.FieldDone)] = isSetter
		updates[model.PlayerField(code, id, model.FieldWon)] = false
		updates[model.PlayerField(code, id, model.FieldGuessCount)] = 0
		updates[model.PlayerField(code, id, model.FieldGuesses)] = nil
		updates[model.PlayerField(code, id, model.FieldIsWordSetter)] = isSetter
		updates[model.PlayerField(code, id, model.FieldTyping)] = nil
		updates[model.PlayerField(code, id, model.FieldProposedWord)] = nil
	}
	return updates
}

func lobbyUpdate(code model.PartyCode, ids []model.PlayerID) map[string]any {
	updates := resetPlayers(code, ids, "")
	updates[model.PartyField(code, model.FieldTargetWord)] = ""
	updates[model.PartyField(code, model.FieldWordQueue)] = nil
	updates[model.PartyField(code, model.FieldWordSetterIndex)] = 0
	updates[model.StatusPath(code)] = string(model.StatusLobby)
	return updates
}
