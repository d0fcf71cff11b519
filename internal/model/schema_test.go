package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCode = PartyCode("ABC234")

func newTree() map[string]any {
	tree := NewPartyTree("host-1", "Hosty")
	tree[FieldPlayers].(map[string]any)["guest-1"] = PlayerTree("Guesty")
	return tree
}

func TestDecodeNewParty(t *testing.T) {
	p, err := DecodeParty(testCode, newTree())
	require.NoError(t, err)

	assert.Equal(t, testCode, p.Code)
	assert.Equal(t, PlayerID("host-1"), p.HostID)
	assert.Equal(t, StatusLobby, p.Status)
	assert.Equal(t, ModeClassic, p.GameMode)
	assert.Equal(t, 0, p.Round)
	assert.Equal(t, []PlayerID{"guest-1", "host-1"}, p.PlayerIDs())
	assert.Equal(t, "Guesty", p.GetPlayer("guest-1").Name)
	assert.False(t, p.AllDone())
	assert.Equal(t, PlayerID(""), p.Setter())
}

func TestDecodeCustomRound(t *testing.T) {
	tree := newTree()
	tree[FieldStatus] = string(StatusPlaying)
	tree[FieldGameMode] = string(ModeCustom)
	tree[FieldRound] = int64(3)
	tree[FieldTargetWord] = "CRANE"
	tree[FieldWordQueue] = QueueTree([]PlayerID{"guest-1", "host-1"})
	tree[FieldWordSetterIndex] = int64(1)

	host := tree[FieldPlayers].(map[string]any)["host-1"].(map[string]any)
	host[FieldIsWordSetter] = true
	host[FieldDone] = true

	guest := tree[FieldPlayers].(map[string]any)["guest-1"].(map[string]any)
	guest[FieldGuesses] = map[string]any{
		"0": GuessTree("SLATE", []LetterState{StateAbsent, StateAbsent, StateCorrect, StateAbsent, StateCorrect}),
	}
	guest[FieldGuessCount] = int64(1)

	p, err := DecodeParty(testCode, tree)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Round)
	assert.Equal(t, PlayerID("host-1"), p.Setter())
	assert.Equal(t, 0, p.NextSetterIndex())
	assert.True(t, p.Players["host-1"].IsWordSetter)
	require.Len(t, p.Players["guest-1"].Guesses, 1)
	assert.Equal(t, "SLATE", p.Players["guest-1"].Guesses[0].Word)
	assert.False(t, p.Players["guest-1"].Guesses[0].Solved())
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tree map[string]any)
	}{
		{"missing host", func(tree map[string]any) { delete(tree, FieldHost) }},
		{"unknown status", func(tree map[string]any) { tree[FieldStatus] = "paused" }},
		{"unknown mode", func(tree map[string]any) { tree[FieldGameMode] = "blitz" }},
		{"negative round", func(tree map[string]any) { tree[FieldRound] = int64(-1) }},
		{"round not a number", func(tree map[string]any) { tree[FieldRound] = "one" }},
		{"target in lobby", func(tree map[string]any) { tree[FieldTargetWord] = "CRANE" }},
		{"host not a player", func(tree map[string]any) { tree[FieldHost] = "ghost" }},
		{"players not an object", func(tree map[string]any) { tree[FieldPlayers] = "nobody" }},
		{"queue with gap", func(tree map[string]any) {
			tree[FieldWordQueue] = map[string]any{"0": "host-1", "2": "guest-1"}
		}},
		{"setter index outside queue", func(tree map[string]any) {
			tree[FieldWordQueue] = QueueTree([]PlayerID{"host-1"})
			tree[FieldWordSetterIndex] = int64(4)
		}},
		{"guess count mismatch", func(tree map[string]any) {
			player(tree, "guest-1")[FieldGuessCount] = int64(2)
		}},
		{"bad letter state", func(tree map[string]any) {
			player(tree, "guest-1")[FieldGuesses] = map[string]any{"0": map[string]any{FieldWord: "SLATE", FieldResult: "hot,cold"}}
			player(tree, "guest-1")[FieldGuessCount] = int64(1)
		}},
		{"setter with guesses", func(tree map[string]any) {
			pl := player(tree, "guest-1")
			pl[FieldIsWordSetter] = true
			pl[FieldGuesses] = map[string]any{"0": GuessTree("SLATE", []LetterState{StateAbsent, StateAbsent, StateAbsent, StateAbsent, StateAbsent})}
			pl[FieldGuessCount] = int64(1)
		}},
		{"done not a bool", func(tree map[string]any) { player(tree, "guest-1")[FieldDone] = "yes" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newTree()
			tt.mutate(tree)
			_, err := DecodeParty(testCode, tree)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}

	_, err := DecodeParty(testCode, "not a tree")
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func player(tree map[string]any, id string) map[string]any {
	return tree[FieldPlayers].(map[string]any)[id].(map[string]any)
}

func TestDecodePlayersEmpty(t *testing.T) {
	players, err := DecodePlayers(testCode, nil)
	require.NoError(t, err)
	assert.Empty(t, players)
	assert.False(t, AllDone(players))
}

func TestSortedPlayers(t *testing.T) {
	players := map[PlayerID]*Player{
		"b": NewPlayer("b", "Sam"),
		"a": NewPlayer("a", "Sam"),
		"c": NewPlayer("c", "Al"),
	}
	sorted := SortedPlayers(players)
	ids := []PlayerID{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	assert.Equal(t, []PlayerID{"c", "a", "b"}, ids)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "parties/ABC234", PartyPath(testCode))
	assert.Equal(t, "parties/ABC234/status", StatusPath(testCode))
	assert.Equal(t, "parties/ABC234/players/p1/guesses/2", GuessPath(testCode, "p1", 2))
	assert.Equal(t, "identities/p1", IdentityPath("p1"))
}
