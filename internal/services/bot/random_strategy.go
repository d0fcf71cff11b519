package bot

import (
	"slices"

	"github.com/mcoot/wordparty/internal/dependencies/random"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/dictionary"
	"github.com/mcoot/wordparty/internal/services/scoring"
)

// RandomStrategy guesses a random answer that is consistent with every
// result seen so far
type RandomStrategy struct {
	dict   *dictionary.Service
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(dict *dictionary.Service, rnd random.Random) *RandomStrategy {
	return &RandomStrategy{dict: dict, random: rnd}
}

// ChooseGuess returns a random remaining candidate. If no answer fits the
// history it falls back to any answer not yet guessed.
func (s *RandomStrategy) ChooseGuess(history []model.Guess) (string, error) {
	answers := s.dict.Answers()
	if len(answers) == 0 {
		return "", dictionary.ErrDictionaryNotLoaded
	}

	candidates := Candidates(answers, history)
	if len(candidates) == 0 {
		for _, w := range answers {
			if !guessed(history, w) {
				candidates = append(candidates, w)
			}
		}
	}
	if len(candidates) == 0 {
		candidates = answers
	}
	return candidates[s.random.Intn(len(candidates))], nil
}

// ChooseWord returns a random answer
func (s *RandomStrategy) ChooseWord() (string, error) {
	return s.dict.RandomAnswer(s.random)
}

// Candidates filters words to those that would have produced every row
// in history had they been the target
func Candidates(words []string, history []model.Guess) []string {
	var out []string
	for _, w := range words {
		if consistent(w, history) {
			out = append(out, w)
		}
	}
	return out
}

func consistent(target string, history []model.Guess) bool {
	for _, g := range history {
		states, err := scoring.Evaluate(g.Word, target)
		if err != nil || !slices.Equal(states, g.Result) {
			return false
		}
	}
	return true
}

func guessed(history []model.Guess, w string) bool {
	for _, g := range history {
		if g.Word == w {
			return true
		}
	}
	return false
}
