package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mcoot/wordparty/internal/api/response"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/party"
)

// Output handles formatting output based on the configured format.
// It is safe for concurrent use: session events are printed from the
// session's event loop while the input loop prints replies.
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
	mu     sync.Mutex
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// JSON reports whether output is machine readable
func (o *Output) JSON() bool {
	return o.format == "json"
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.JSON() {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.JSON() {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{
				"message": describeError(err),
			},
		})
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", describeError(err))
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.JSON() {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	data = jsonView(data)
	enc := json.NewEncoder(o.w)
	if _, ok := data.(EventLine); !ok {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Party:
		o.printParty(v)
	case response.Evaluation:
		o.printEvaluation(v)
	case response.Word:
		o.printWord(v)
	case HealthResult:
		o.printHealthResult(v)
	case model.Guess:
		o.printf("%s\n", renderRow(v))
	case SoloResult:
		o.printSoloResult(v)
	case model.Event:
		o.printEvent(v)
	case party.View:
		o.printView(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// SoloResult is the outcome of a solo game
type SoloResult struct {
	Target  string           `json:"target"`
	Won     bool             `json:"won"`
	Guesses []response.Guess `json:"guesses"`
}

// EventLine is the JSON form of a session event, one per line
type EventLine struct {
	Type    string `json:"type"`
	Party   string `json:"party,omitempty"`
	Player  string `json:"player,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// View is the JSON form of a session snapshot
type View struct {
	UID          string           `json:"uid"`
	Code         string           `json:"code,omitempty"`
	IsHost       bool             `json:"is_host"`
	Phase        string           `json:"phase,omitempty"`
	Round        int              `json:"round"`
	Mode         string           `json:"mode,omitempty"`
	IsWordSetter bool             `json:"is_word_setter,omitempty"`
	Rows         []response.Guess `json:"rows,omitempty"`
	Remaining    int              `json:"remaining"`
	Target       string           `json:"target,omitempty"`
}

func jsonView(data any) any {
	switch v := data.(type) {
	case model.Event:
		line := EventLine{
			Type:    string(v.Type),
			Party:   string(v.PartyCode),
			Player:  string(v.PlayerID),
			Payload: v.Payload,
		}
		if p, ok := v.Payload.(model.SessionErrorPayload); ok {
			line.Payload = map[string]string{"error": describeError(p.Err)}
		}
		return line
	case model.Guess:
		return guessResponse(v)
	case party.View:
		out := View{
			UID:          string(v.UID),
			Code:         string(v.Code),
			IsHost:       v.IsHost,
			Phase:        string(v.Phase),
			Round:        v.Round,
			Mode:         string(v.Mode),
			IsWordSetter: v.IsWordSetter,
			Remaining:    v.Remaining,
			Target:       v.Target,
		}
		for _, g := range v.Rows {
			out.Rows = append(out.Rows, guessResponse(g))
		}
		return out
	}
	return data
}

func guessResponse(g model.Guess) response.Guess {
	return response.Guess{Word: g.Word, Result: response.States(g.Result)}
}

// renderRow draws a scored guess: [X] correct, (X) present, plain absent
func renderRow(g model.Guess) string {
	var b strings.Builder
	for i, r := range g.Word {
		state := model.StateAbsent
		if i < len(g.Result) {
			state = g.Result[i]
		}
		switch state {
		case model.StateCorrect:
			fmt.Fprintf(&b, "[%c]", r)
		case model.StatePresent:
			fmt.Fprintf(&b, "(%c)", r)
		default:
			fmt.Fprintf(&b, " %c ", r)
		}
	}
	return b.String()
}

func (o *Output) printParty(p response.Party) {
	o.printf("Party: %s\n", p.Code)
	o.printf("Status: %s\n", p.Status)
	if p.Round > 0 {
		o.printf("Round: %d (%s)\n", p.Round, p.GameMode)
	}
	if p.WordSetter != "" {
		o.printf("Word Setter: %s\n", p.WordSetter)
	}
	if p.TargetWord != "" {
		o.printf("Word: %s\n", p.TargetWord)
	}
	o.printf("Players (%d):\n", len(p.Players))
	for _, pl := range p.Players {
		tags := ""
		if pl.ID == p.Host {
			tags += " [host]"
		}
		if pl.IsWordSetter {
			tags += " [setter]"
		}
		progress := ""
		if pl.Done {
			progress = fmt.Sprintf(" - done in %d", pl.GuessCount)
			if !pl.Won {
				progress = " - out of guesses"
			}
		} else if pl.GuessCount > 0 {
			progress = fmt.Sprintf(" - %d guesses", pl.GuessCount)
		}
		o.printf("  - %s (%s)%s%s\n", pl.Name, pl.ID, tags, progress)
	}
}

func (o *Output) printEvaluation(e response.Evaluation) {
	states := make([]model.LetterState, len(e.Result))
	for i, s := range e.Result {
		states[i] = model.LetterState(s)
	}
	o.printf("%s\n", renderRow(model.Guess{Word: e.Guess, Result: states}))
	if e.Solved {
		o.printf("Solved!\n")
	}
}

func (o *Output) printWord(w response.Word) {
	switch {
	case w.Answer:
		o.printf("%s is a valid guess and a possible answer\n", w.Word)
	case w.Valid:
		o.printf("%s is a valid guess\n", w.Word)
	default:
		o.printf("%s is not in the word list\n", w.Word)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	o.printf("Status: %s\n", h.Status)
}

func (o *Output) printSoloResult(r SoloResult) {
	if r.Won {
		o.printf("Solved in %d! The word was %s\n", len(r.Guesses), r.Target)
	} else {
		o.printf("The word was %s\n", r.Target)
	}
}

func (o *Output) printView(v party.View) {
	if v.Code == "" {
		o.printf("Not in a party\n")
		return
	}
	role := "guest"
	if v.IsHost {
		role = "host"
	}
	o.printf("Party %s as %s: %s", v.Code, role, v.Phase)
	if v.Round > 0 {
		o.printf(", round %d (%s)", v.Round, v.Mode)
	}
	o.printf("\n")
	for _, g := range v.Rows {
		o.printf("%s\n", renderRow(g))
	}
	if v.Phase == model.StatusPlaying && !v.IsWordSetter && !v.Finished {
		o.printf("%d guesses left\n", v.Remaining)
	}
}

func (o *Output) printEvent(ev model.Event) {
	switch p := ev.Payload.(type) {
	case model.PhaseChangedPayload:
		if p.From == "" {
			o.printf("Phase: %s\n", p.To)
		} else {
			o.printf("Phase: %s -> %s\n", p.From, p.To)
		}
	case model.PlayersChangedPayload:
		names := make([]string, 0, len(p.Players))
		for _, pl := range p.Players {
			name := pl.Name
			if pl.ID == p.HostID {
				name += " (host)"
			}
			names = append(names, name)
		}
		o.printf("Players: %s\n", strings.Join(names, ", "))
	case model.AwaitingWordPayload:
		o.printf("Waiting for %s to choose a word\n", p.SetterName)
	case model.RoundStartedPayload:
		hard := ""
		if p.HardMode {
			hard = ", hard mode"
		}
		if p.IsWordSetter {
			o.printf("Round %d started (%s%s). You set the word, so you are watching.\n", p.Round, p.Mode, hard)
		} else {
			o.printf("Round %d started (%s%s). Guess the %d letter word.\n", p.Round, p.Mode, hard, p.WordLength)
		}
	case model.RoundResultsPayload:
		o.printf("Round %d results. The word was %s\n", p.Round, p.TargetWord)
		for _, s := range p.Standings {
			o.printf("  %d. %s - %s\n", s.Rank, s.Name, standingNote(s))
		}
	case model.SessionErrorPayload:
		o.printf("Error: %s\n", describeError(p.Err))
	default:
		switch ev.Type {
		case model.EventWordRequested:
			o.printf("You choose the word this round. Enter: word <WORD>\n")
		case model.EventPartyClosed:
			o.printf("Party %s closed\n", ev.PartyCode)
		default:
			o.printf("%s\n", ev.Type)
		}
	}
}

func standingNote(s model.Standing) string {
	switch {
	case s.IsWordSetter:
		return "set the word"
	case s.Won:
		return fmt.Sprintf("solved in %d", s.GuessCount)
	default:
		return "did not solve"
	}
}
