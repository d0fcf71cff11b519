package party

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/wordparty/internal/model"
)

func TestRankOrdersWinnersSetterLast(t *testing.T) {
	players := map[model.PlayerID]*model.Player{
		"a": {ID: "a", Name: "Ann", Won: false, GuessCount: 6, Done: true},
		"b": {ID: "b", Name: "Bob", Won: true, GuessCount: 4, Done: true},
		"c": {ID: "c", Name: "Cat", Won: true, GuessCount: 2, Done: true},
		"d": {ID: "d", Name: "Dan", IsWordSetter: true, Done: true},
		"e": {ID: "e", Name: "Eve", Won: true, GuessCount: 2, Done: true},
	}

	standings := Rank(players)

	ids := make([]model.PlayerID, len(standings))
	for i, st := range standings {
		ids[i] = st.PlayerID
		assert.Equal(t, i+1, st.Rank)
	}
	assert.Equal(t, []model.PlayerID{"c", "e", "b", "a", "d"}, ids)
	assert.True(t, standings[4].IsWordSetter)
}

func TestRankSetterLastEvenWithBetterFields(t *testing.T) {
	players := map[model.PlayerID]*model.Player{
		"s": {ID: "s", Name: "Aaron", IsWordSetter: true, Won: true, GuessCount: 0},
		"p": {ID: "p", Name: "Zoe", Won: false, GuessCount: 6},
	}
	standings := Rank(players)
	assert.Equal(t, model.PlayerID("p"), standings[0].PlayerID)
	assert.Equal(t, model.PlayerID("s"), standings[1].PlayerID)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
