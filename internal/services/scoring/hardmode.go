package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcoot/wordparty/internal/model"
)

// Constraints accumulates hard-mode evidence for one player in one round.
// Evidence only grows until Reset.
type Constraints struct {
	exact       map[int]rune
	mustContain map[rune]int
}

// NewConstraints returns an empty tracker
func NewConstraints() *Constraints {
	c := &Constraints{}
	c.Reset()
	return c
}

// Reset clears all evidence, at the start of a round
func (c *Constraints) Reset() {
	c.exact = make(map[int]rune)
	c.mustContain = make(map[rune]int)
}

// Record merges the evidence from an evaluated guess
func (c *Constraints) Record(guess string, states []model.LetterState) {
	letters := []rune(strings.ToUpper(guess))
	found := make(map[rune]int)
	for i, st := range states {
		if i >= len(letters) {
			break
		}
		switch st {
		case model.StateCorrect:
			c.exact[i] = letters[i]
			found[letters[i]]++
		case model.StatePresent:
			found[letters[i]]++
		}
	}
	for letter, n := range found {
		if n > c.mustContain[letter] {
			c.mustContain[letter] = n
		}
	}
}

// Check validates a guess against the evidence so far. Fixed positions are
// checked before required letters.
func (c *Constraints) Check(guess string) error {
	letters := []rune(strings.ToUpper(guess))

	positions := make([]int, 0, len(c.exact))
	for pos := range c.exact {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	for _, pos := range positions {
		want := c.exact[pos]
		if pos >= len(letters) || letters[pos] != want {
			return model.NewValidationError("guess",
				fmt.Sprintf("%s letter must be %c", ordinal(pos+1), want))
		}
	}

	counts := make(map[rune]int)
	for _, r := range letters {
		counts[r]++
	}
	required := make([]rune, 0, len(c.mustContain))
	for r := range c.mustContain {
		required = append(required, r)
	}
	sort.Slice(required, func(i, j int) bool { return required[i] < required[j] })
	for _, r := range required {
		n := c.mustContain[r]
		if counts[r] >= n {
			continue
		}
		if n > 1 {
			return model.NewValidationError("guess", fmt.Sprintf("Guess must contain at least %d %c", n, r))
		}
		return model.NewValidationError("guess", fmt.Sprintf("Guess must contain %c", r))
	}
	return nil
}

// Exact returns the fixed letters by position
func (c *Constraints) Exact() map[int]rune {
	out := make(map[int]rune, len(c.exact))
	for k, v := range c.exact {
		out[k] = v
	}
	return out
}

// MustContain returns the minimum count required per letter
func (c *Constraints) MustContain() map[rune]int {
	out := make(map[rune]int, len(c.mustContain))
	for k, v := range c.mustContain {
		out[k] = v
	}
	return out
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
