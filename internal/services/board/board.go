// Package board holds one player's rows for a round or a solo game.
package board

import (
	"errors"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/scoring"
)

// ErrBoardFinished is returned when guessing after the board was won or ran out of rows
var ErrBoardFinished = errors.New("board is finished")

// WordChecker decides which guesses are accepted
type WordChecker interface {
	IsValidWord(word string) bool
}

// Config holds board rules
type Config struct {
	MaxGuesses int
	HardMode   bool
}

// DefaultConfig returns the standard six-row board
func DefaultConfig() Config {
	return Config{MaxGuesses: 6}
}

// Result describes an accepted guess
type Result struct {
	Row      int
	Word     string
	States   []model.LetterState
	Finished bool
	Won      bool
}

// Board validates and scores guesses against a target word.
// It is not safe for concurrent use.
type Board struct {
	target      string
	dict        WordChecker
	cfg         Config
	constraints *scoring.Constraints
	rows        []model.Guess
	won         bool
}

// New creates a board for target
func New(target string, dict WordChecker, cfg Config) *Board {
	if cfg.MaxGuesses <= 0 {
		cfg.MaxGuesses = DefaultConfig().MaxGuesses
	}
	return &Board{
		target:      model.NormalizeWord(target),
		dict:        dict,
		cfg:         cfg,
		constraints: scoring.NewConstraints(),
	}
}

// Validate checks a guess without scoring it. Rejections are
// *model.ValidationError with a user-facing reason.
func (b *Board) Validate(raw string) (string, error) {
	if b.Finished() {
		return "", ErrBoardFinished
	}
	word := model.NormalizeWord(raw)
	switch {
	case len(word) < len(b.target):
		return "", model.NewValidationError("guess", "Not enough letters")
	case len(word) > len(b.target):
		return "", model.NewValidationError("guess", "Too many letters")
	case !model.IsWordShape(word):
		return "", model.NewValidationError("guess", "Letters only")
	case b.dict != nil && !b.dict.IsValidWord(word):
		return "", model.NewValidationError("guess", "Not in word list")
	}
	if b.cfg.HardMode {
		if err := b.constraints.Check(word); err != nil {
			return "", err
		}
	}
	return word, nil
}

// Submit validates, scores and records a guess
func (b *Board) Submit(raw string) (*Result, error) {
	word, states, err := b.Score(raw)
	if err != nil {
		return nil, err
	}
	return b.Commit(word, states)
}

// Score validates and scores a guess without recording it. Callers that
// persist rows elsewhere commit only after the write succeeded.
func (b *Board) Score(raw string) (string, []model.LetterState, error) {
	word, err := b.Validate(raw)
	if err != nil {
		return "", nil, err
	}
	states, err := scoring.Evaluate(word, b.target)
	if err != nil {
		return "", nil, err
	}
	return word, states, nil
}

// Commit records a scored row as the next guess
func (b *Board) Commit(word string, states []model.LetterState) (*Result, error) {
	if b.Finished() {
		return nil, ErrBoardFinished
	}
	word = model.NormalizeWord(word)
	if len(states) != len(word) {
		return nil, model.NewValidationError("guess", "result does not match word")
	}
	states = append([]model.LetterState(nil), states...)
	b.constraints.Record(word, states)
	b.rows = append(b.rows, model.Guess{Word: word, Result: states})
	b.won = scoring.Solved(states)

	return &Result{
		Row:      len(b.rows) - 1,
		Word:     word,
		States:   states,
		Finished: b.Finished(),
		Won:      b.won,
	}, nil
}

// Preview returns the result Commit would produce without recording it
func (b *Board) Preview(word string, states []model.LetterState) Result {
	won := scoring.Solved(states)
	return Result{
		Row:      len(b.rows),
		Word:     model.NormalizeWord(word),
		States:   states,
		Finished: won || len(b.rows)+1 >= b.cfg.MaxGuesses,
		Won:      won,
	}
}

// Rows returns the accepted guesses so far
func (b *Board) Rows() []model.Guess {
	return append([]model.Guess(nil), b.rows...)
}

// Finished reports whether no more guesses are accepted
func (b *Board) Finished() bool {
	return b.won || len(b.rows) >= b.cfg.MaxGuesses
}

// Won reports whether the target was found
func (b *Board) Won() bool {
	return b.won
}

// Target returns the word being guessed
func (b *Board) Target() string {
	return b.target
}

// Remaining returns how many rows are left
func (b *Board) Remaining() int {
	if b.won {
		return 0
	}
	return b.cfg.MaxGuesses - len(b.rows)
}

// HardMode reports whether hard-mode constraints apply
func (b *Board) HardMode() bool {
	return b.cfg.HardMode
}
