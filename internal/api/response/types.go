package response

import (
	"github.com/mcoot/wordparty/internal/model"
)

// Party represents a party in API responses
type Party struct {
	Code       string   `json:"code"`
	Host       string   `json:"host"`
	Status     string   `json:"status"`
	GameMode   string   `json:"game_mode"`
	Round      int      `json:"round"`
	WordSetter string   `json:"word_setter,omitempty"`
	TargetWord string   `json:"target_word,omitempty"`
	Players    []Player `json:"players"`
	AllDone    bool     `json:"all_done"`
}

// Player represents a party member in API responses
type Player struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Done         bool    `json:"done"`
	Won          bool    `json:"won"`
	GuessCount   int     `json:"guess_count"`
	IsWordSetter bool    `json:"is_word_setter,omitempty"`
	Guesses      []Guess `json:"guesses,omitempty"`
}

// Guess represents one scored row
type Guess struct {
	Word   string   `json:"word"`
	Result []string `json:"result"`
}

// PartyFromModel converts a model.Party. The target word is only included
// once the round is over.
func PartyFromModel(p *model.Party) Party {
	out := Party{
		Code:       string(p.Code),
		Host:       string(p.HostID),
		Status:     string(p.Status),
		GameMode:   string(p.GameMode),
		Round:      p.Round,
		WordSetter: string(p.Setter()),
		AllDone:    p.AllDone(),
	}
	if p.Status == model.StatusResults {
		out.TargetWord = p.TargetWord
	}
	for _, pl := range model.SortedPlayers(p.Players) {
		out.Players = append(out.Players, PlayerFromModel(pl))
	}
	return out
}

// PlayerFromModel converts a model.Player
func PlayerFromModel(p model.Player) Player {
	out := Player{
		ID:           string(p.ID),
		Name:         p.Name,
		Done:         p.Done,
		Won:          p.Won,
		GuessCount:   p.GuessCount,
		IsWordSetter: p.IsWordSetter,
	}
	for _, g := range p.Guesses {
		out.Guesses = append(out.Guesses, Guess{Word: g.Word, Result: States(g.Result)})
	}
	return out
}

// States converts letter states to strings
func States(states []model.LetterState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}

// Evaluation is the response for scoring a guess
type Evaluation struct {
	Guess  string   `json:"guess"`
	Target string   `json:"target"`
	Result []string `json:"result"`
	Solved bool     `json:"solved"`
}

// Word is the response for a dictionary lookup
type Word struct {
	Word   string `json:"word"`
	Valid  bool   `json:"valid"`
	Answer bool   `json:"answer"`
}

// Closed is the final event of a party stream
type Closed struct {
	Code string `json:"code"`
}
