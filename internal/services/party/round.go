package party

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/board"
	"github.com/mcoot/wordparty/internal/store"
)

// Guess validates and scores a guess on this client's board, records it in
// the player's own record, and marks the round done when the board finishes.
// Rejected guesses never reach the store, and a row only joins the local
// board once its write succeeded.
func (s *Session) Guess(ctx context.Context, word string) (*board.Result, error) {
	s.mu.Lock()
	defer s.unlock()
	if err := s.requireBoardLocked(); err != nil {
		return nil, err
	}

	scored, states, err := s.board.Score(word)
	if err != nil {
		return nil, err
	}
	return s.commitGuessLocked(ctx, scored, states)
}

// RecordGuess writes an already scored guess to this player's record. Rows
// are appended in order: row must be the next free row of this round.
func (s *Session) RecordGuess(ctx context.Context, word string, states []model.LetterState, row int) error {
	word = model.NormalizeWord(word)
	if !model.IsWordShape(word) || len(states) != len(word) {
		return model.NewValidationError("guess", "result does not match word")
	}

	s.mu.Lock()
	defer s.unlock()
	if err := s.requireBoardLocked(); err != nil {
		return err
	}
	if s.board.Finished() {
		return board.ErrBoardFinished
	}
	if next := len(s.board.Rows()); row != next {
		return model.NewValidationError("row", fmt.Sprintf("expected row %d, got %d", next, row))
	}
	_, err := s.commitGuessLocked(ctx, word, states)
	return err
}

func (s *Session) commitGuessLocked(ctx context.Context, word string, states []model.LetterState) (*board.Result, error) {
	preview := s.board.Preview(word, states)
	updates := s.guessUpdate(preview.Word, preview.States, preview.Row)
	if preview.Finished {
		updates[model.PlayerField(s.code, s.uid, model.FieldDone)] = true
		updates[model.PlayerField(s.code, s.uid, model.FieldWon)] = preview.Won
	}
	if err := s.store.Update(ctx, updates); err != nil {
		return nil, fmt.Errorf("recording guess %d: %w", preview.Row, err)
	}
	return s.board.Commit(preview.Word, preview.States)
}

// MarkRoundDone records that this player has finished the round
func (s *Session) MarkRoundDone(ctx context.Context, won bool) error {
	s.mu.Lock()
	defer s.unlock()
	if err := s.requireGuesserLocked(); err != nil {
		return err
	}
	return s.store.Update(ctx, map[string]any{
		model.PlayerField(s.code, s.uid, model.FieldDone): true,
		model.PlayerField(s.code, s.uid, model.FieldWon):  won,
	})
}

func (s *Session) requireBoardLocked() error {
	if err := s.requireGuesserLocked(); err != nil {
		return err
	}
	if s.board == nil {
		return fmt.Errorf("%w: no board for this round", model.ErrWrongPhase)
	}
	return nil
}

func (s *Session) requireGuesserLocked() error {
	if err := s.requireParty(); err != nil {
		return err
	}
	if err := s.requirePhase(model.StatusPlaying); err != nil {
		return err
	}
	if s.isSetter {
		return fmt.Errorf("%w: the word setter does not guess", model.ErrWrongPhase)
	}
	return nil
}

func (s *Session) guessUpdate(word string, states []model.LetterState, row int) map[string]any {
	return map[string]any{
		model.GuessPath(s.code, s.uid, row):                     model.GuessTree(word, states),
		model.PlayerField(s.code, s.uid, model.FieldGuessCount): row + 1,
		model.PlayerField(s.code, s.uid, model.FieldTyping):     nil,
	}
}

// armBarrierLocked starts the host's check that every player is done
func (s *Session) armBarrierLocked() error {
	if s.barrierScope != nil {
		s.barrierScope.Release()
	}
	scope := store.NewScope()
	s.barrierScope = scope
	round := s.round
	return s.subscribeLocked(scope, model.PlayersPath(s.code), func(snap store.Snapshot) {
		s.onBarrierLocked(scope, round, snap)
	})
}

func (s *Session) onBarrierLocked(scope *store.Scope, round int, snap store.Snapshot) {
	if s.phase != model.StatusPlaying || s.round != round || s.resultsRound >= round {
		return
	}
	players, err := model.DecodePlayers(s.code, snap.Value())
	if err != nil {
		s.reportLocked(err)
		return
	}
	if !model.AllDone(players) {
		return
	}

	// Stop listening before writing so results are written once
	scope.Release()
	s.resultsRound = round
	if err := s.store.Set(s.ctx, model.StatusPath(s.code), string(model.StatusResults)); err != nil {
		s.resultsRound = round - 1
		s.reportLocked(fmt.Errorf("writing results: %w", err))
		return
	}
	s.logger.Info("round complete", slog.String("party", string(s.code)), slog.Int("round", round))
}
