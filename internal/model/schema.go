package model

import (
	"math"
	"sort"
	"strconv"
)

// Records read from the shared store are untyped trees (map[string]any with
// string, bool and integer leaves). The decoders here are the only way a tree
// becomes a Party, and they reject anything that does not match the schema.

// DecodeParty validates a raw party tree and converts it to a Party
func DecodeParty(code PartyCode, raw any) (*Party, error) {
	path := PartyPath(code)
	tree, ok := raw.(map[string]any)
	if !ok {
		return nil, Malformed(path, "expected object, got %T", raw)
	}

	p := &Party{Code: code}
	var err error

	host, err := stringField(tree, path, FieldHost, true)
	if err != nil {
		return nil, err
	}
	p.HostID = PlayerID(host)

	status, err := stringField(tree, path, FieldStatus, true)
	if err != nil {
		return nil, err
	}
	p.Status = Status(status)
	if !p.Status.Valid() {
		return nil, Malformed(path, "unknown status %q", status)
	}

	mode, err := stringField(tree, path, FieldGameMode, false)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = string(ModeClassic)
	}
	p.GameMode = GameMode(mode)
	if !p.GameMode.Valid() {
		return nil, Malformed(path, "unknown game mode %q", mode)
	}

	if p.Round, err = intField(tree, path, FieldRound); err != nil {
		return nil, err
	}
	if p.TargetWord, err = stringField(tree, path, FieldTargetWord, false); err != nil {
		return nil, err
	}
	if p.TargetWord != "" {
		if p.Status != StatusPlaying && p.Status != StatusResults {
			return nil, Malformed(path, "target word set while %s", p.Status)
		}
		if !IsWordShape(p.TargetWord) {
			return nil, Malformed(path, "target word %q is not %d letters A-Z", p.TargetWord, WordLength)
		}
	}
	if p.WordSetterIndex, err = intField(tree, path, FieldWordSetterIndex); err != nil {
		return nil, err
	}

	if p.WordQueue, err = decodeQueue(tree[FieldWordQueue], path+"/"+FieldWordQueue); err != nil {
		return nil, err
	}
	if len(p.WordQueue) > 0 && (p.WordSetterIndex < 0 || p.WordSetterIndex >= len(p.WordQueue)) {
		return nil, Malformed(path, "word setter index %d outside queue of %d", p.WordSetterIndex, len(p.WordQueue))
	}

	if p.Players, err = DecodePlayers(code, tree[FieldPlayers]); err != nil {
		return nil, err
	}
	if p.Players[p.HostID] == nil {
		return nil, Malformed(path, "host %q is not a player", p.HostID)
	}

	return p, nil
}

// DecodePlayers validates a raw players map
func DecodePlayers(code PartyCode, raw any) (map[PlayerID]*Player, error) {
	path := PlayersPath(code)
	players := make(map[PlayerID]*Player)
	if raw == nil {
		return players, nil
	}
	tree, ok := raw.(map[string]any)
	if !ok {
		return nil, Malformed(path, "expected object, got %T", raw)
	}
	for id, v := range tree {
		pl, err := DecodePlayer(code, PlayerID(id), v)
		if err != nil {
			return nil, err
		}
		players[pl.ID] = pl
	}
	return players, nil
}

// DecodePlayer validates one raw player record
func DecodePlayer(code PartyCode, id PlayerID, raw any) (*Player, error) {
	path := PlayerPath(code, id)
	tree, ok := raw.(map[string]any)
	if !ok {
		return nil, Malformed(path, "expected object, got %T", raw)
	}

	pl := &Player{ID: id}
	var err error
	if pl.Name, err = stringField(tree, path, FieldName, true); err != nil {
		return nil, err
	}
	if len([]rune(pl.Name)) > MaxNameLength {
		return nil, Malformed(path, "name longer than %d", MaxNameLength)
	}
	if pl.Done, err = boolField(tree, path, FieldDone); err != nil {
		return nil, err
	}
	if pl.Won, err = boolField(tree, path, FieldWon); err != nil {
		return nil, err
	}
	if pl.IsWordSetter, err = boolField(tree, path, FieldIsWordSetter); err != nil {
		return nil, err
	}
	if pl.GuessCount, err = intField(tree, path, FieldGuessCount); err != nil {
		return nil, err
	}
	if pl.Typing, err = stringField(tree, path, FieldTyping, false); err != nil {
		return nil, err
	}
	if pl.ProposedWord, err = stringField(tree, path, FieldProposedWord, false); err != nil {
		return nil, err
	}
	if pl.Guesses, err = decodeGuesses(tree[FieldGuesses], path+"/"+FieldGuesses); err != nil {
		return nil, err
	}
	if pl.GuessCount != len(pl.Guesses) {
		return nil, Malformed(path, "guessCount %d but %d guesses", pl.GuessCount, len(pl.Guesses))
	}
	if pl.IsWordSetter && len(pl.Guesses) > 0 {
		return nil, Malformed(path, "word setter has guesses")
	}
	return pl, nil
}

func decodeGuesses(raw any, path string) ([]Guess, error) {
	rows, err := indexedEntries(raw, path)
	if err != nil {
		return nil, err
	}
	guesses := make([]Guess, len(rows))
	for i, row := range rows {
		rowPath := path + "/" + strconv.Itoa(i)
		tree, ok := row.(map[string]any)
		if !ok {
			return nil, Malformed(rowPath, "expected object, got %T", row)
		}
		word, err := stringField(tree, rowPath, FieldWord, true)
		if err != nil {
			return nil, err
		}
		result, err := stringField(tree, rowPath, FieldResult, true)
		if err != nil {
			return nil, err
		}
		states, err := ParseStates(result)
		if err != nil {
			return nil, Malformed(rowPath, "%v", err)
		}
		if len(states) != len(word) {
			return nil, Malformed(rowPath, "result has %d states for %d letters", len(states), len(word))
		}
		guesses[i] = Guess{Word: word, Result: states}
	}
	return guesses, nil
}

func decodeQueue(raw any, path string) ([]PlayerID, error) {
	entries, err := indexedEntries(raw, path)
	if err != nil {
		return nil, err
	}
	queue := make([]PlayerID, len(entries))
	for i, e := range entries {
		s, ok := e.(string)
		if !ok || s == "" {
			return nil, Malformed(path, "entry %d is not a player id", i)
		}
		queue[i] = PlayerID(s)
	}
	return queue, nil
}

// indexedEntries reads a {"0": ..., "1": ...} map whose keys must be contiguous from 0
func indexedEntries(raw any, path string) ([]any, error) {
	if raw == nil {
		return nil, nil
	}
	tree, ok := raw.(map[string]any)
	if !ok {
		return nil, Malformed(path, "expected object, got %T", raw)
	}
	out := make([]any, len(tree))
	for k, v := range tree {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(tree) || strconv.Itoa(i) != k {
			return nil, Malformed(path, "keys must be contiguous from 0, found %q", k)
		}
		out[i] = v
	}
	return out, nil
}

func stringField(tree map[string]any, path, field string, required bool) (string, error) {
	v, ok := tree[field]
	if !ok || v == nil {
		if required {
			return "", Malformed(path, "missing %s", field)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", Malformed(path, "%s: expected string, got %T", field, v)
	}
	return s, nil
}

func boolField(tree map[string]any, path, field string) (bool, error) {
	v, ok := tree[field]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, Malformed(path, "%s: expected bool, got %T", field, v)
	}
	return b, nil
}

func intField(tree map[string]any, path, field string) (int, error) {
	v, ok := tree[field]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := ToInt(v)
	if !ok || n < 0 {
		return 0, Malformed(path, "%s: expected non-negative integer, got %v", field, v)
	}
	return n, nil
}

// ToInt converts the integer representations a store may hand back
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// Encoding helpers build the trees written to the store.

// PlayerTree returns the stored form of a fresh player record
func PlayerTree(name string) map[string]any {
	return map[string]any{
		FieldName:         name,
		FieldDone:         false,
		FieldWon:          false,
		FieldGuessCount:   0,
		FieldIsWordSetter: false,
	}
}

// GuessTree returns the stored form of one guess row
func GuessTree(word string, states []LetterState) map[string]any {
	return map[string]any{
		FieldWord:   word,
		FieldResult: JoinStates(states),
	}
}

// QueueTree returns the stored form of a word queue
func QueueTree(queue []PlayerID) map[string]any {
	tree := make(map[string]any, len(queue))
	for i, id := range queue {
		tree[strconv.Itoa(i)] = string(id)
	}
	return tree
}

// NewPartyTree returns the stored form of a freshly created party in the lobby
func NewPartyTree(host PlayerID, hostName string) map[string]any {
	return map[string]any{
		FieldHost:            string(host),
		FieldStatus:          string(StatusLobby),
		FieldGameMode:        string(ModeClassic),
		FieldRound:           0,
		FieldTargetWord:      "",
		FieldWordSetterIndex: 0,
		FieldPlayers: map[string]any{
			string(host): PlayerTree(hostName),
		},
	}
}

// SortedPlayers returns the players ordered by name, then ID
func SortedPlayers(players map[PlayerID]*Player) []Player {
	out := make([]Player, 0, len(players))
	for _, pl := range players {
		out = append(out, *pl)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
