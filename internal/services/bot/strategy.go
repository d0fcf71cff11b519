package bot

import "github.com/mcoot/wordparty/internal/model"

// Strategy defines how a bot picks words
type Strategy interface {
	// ChooseGuess selects the next guess given the rows played so far
	ChooseGuess(history []model.Guess) (string, error)
	// ChooseWord selects a target word when the bot is the word setter
	ChooseWord() (string, error)
}
