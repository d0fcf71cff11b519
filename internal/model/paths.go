package model

import (
	"strconv"
	"strings"
)

// Store path schema. Every path is slash separated and rooted at the store root.
const (
	PartiesRoot    = "parties"
	IdentitiesRoot = "identities"

	FieldHost            = "host"
	FieldStatus          = "status"
	FieldGameMode        = "gameMode"
	FieldRound           = "round"
	FieldTargetWord      = "targetWord"
	FieldWordSetterIndex = "wordSetterIndex"
	FieldWordQueue       = "wordQueue"
	FieldPlayers         = "players"

	FieldName         = "name"
	FieldDone         = "done"
	FieldWon          = "won"
	FieldGuessCount   = "guessCount"
	FieldGuesses      = "guesses"
	FieldIsWordSetter = "isWordSetter"
	FieldTyping       = "typing"
	FieldProposedWord = "proposedWord"

	FieldWord   = "word"
	FieldResult = "result"
)

func join(parts ...string) string {
	return strings.Join(parts, "/")
}

// PartyPath returns the path of a whole party record
func PartyPath(code PartyCode) string {
	return join(PartiesRoot, string(code))
}

// PartyField returns the path of a party-wide field
func PartyField(code PartyCode, field string) string {
	return join(PartiesRoot, string(code), field)
}

// StatusPath returns the path of the party status
func StatusPath(code PartyCode) string {
	return PartyField(code, FieldStatus)
}

// PlayersPath returns the path of the players map
func PlayersPath(code PartyCode) string {
	return PartyField(code, FieldPlayers)
}

// PlayerPath returns the path of one player record
func PlayerPath(code PartyCode, id PlayerID) string {
	return join(PartiesRoot, string(code), FieldPlayers, string(id))
}

// PlayerField returns the path of a field in a player record
func PlayerField(code PartyCode, id PlayerID, field string) string {
	return join(PlayerPath(code, id), field)
}

// GuessPath returns the path of one guess row
func GuessPath(code PartyCode, id PlayerID, row int) string {
	return join(PlayerPath(code, id), FieldGuesses, strconv.Itoa(row))
}

// IdentityPath returns the path of an identity record
func IdentityPath(id PlayerID) string {
	return join(IdentitiesRoot, string(id))
}
