// Package scoring evaluates guesses against a target word and tracks the
// evidence hard mode requires later guesses to reuse.
package scoring

import (
	"errors"
	"strings"

	"github.com/mcoot/wordparty/internal/model"
)

// ErrLengthMismatch is returned when guess and target differ in length
var ErrLengthMismatch = errors.New("guess and target lengths differ")

// Evaluate marks each letter of guess against target.
//
// Exact matches are marked first. Each remaining guess letter, left to right,
// then claims the leftmost unclaimed occurrence of that letter in the target,
// so a letter is never marked more often than the target contains it.
func Evaluate(guess, target string) ([]model.LetterState, error) {
	g := []rune(strings.ToUpper(guess))
	t := []rune(strings.ToUpper(target))
	if len(g) != len(t) {
		return nil, ErrLengthMismatch
	}

	states := make([]model.LetterState, len(g))
	consumed := make([]bool, len(t))

	for i := range g {
		if g[i] == t[i] {
			states[i] = model.StateCorrect
			consumed[i] = true
		}
	}

	for i := range g {
		if states[i] == model.StateCorrect {
			continue
		}
		states[i] = model.StateAbsent
		for j := range t {
			if !consumed[j] && t[j] == g[i] {
				states[i] = model.StatePresent
				consumed[j] = true
				break
			}
		}
	}

	return states, nil
}

// Solved reports whether every letter is correct
func Solved(states []model.LetterState) bool {
	if len(states) == 0 {
		return false
	}
	for _, s := range states {
		if s != model.StateCorrect {
			return false
		}
	}
	return true
}
