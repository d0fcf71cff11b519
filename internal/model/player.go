package model

// Player is one participant's record inside a party.
// A player writes only its own record; the host may reset everyone's round fields.
type Player struct {
	ID           PlayerID
	Name         string
	Done         bool
	Won          bool
	GuessCount   int
	Guesses      []Guess // row index -> guess, contiguous from 0
	IsWordSetter bool
	Typing       string // transient, cosmetic
	ProposedWord string // transient, custom mode relay only
}

// NewPlayer creates a fresh player record with no round progress
func NewPlayer(id PlayerID, name string) *Player {
	return &Player{ID: id, Name: name}
}

// Guess is one scored row
type Guess struct {
	Word   string
	Result []LetterState
}

// Solved returns true if every letter in the guess is correct
func (g Guess) Solved() bool {
	if len(g.Result) == 0 {
		return false
	}
	for _, s := range g.Result {
		if s != StateCorrect {
			return false
		}
	}
	return true
}
