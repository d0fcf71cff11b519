package model

import (
	"fmt"
	"strings"
)

// LetterState is the evaluation of one letter of a guess
type LetterState string

const (
	StateCorrect LetterState = "correct" // right letter, right position
	StatePresent LetterState = "present" // in the target elsewhere
	StateAbsent  LetterState = "absent"
)

// JoinStates encodes states the way they are persisted: comma-joined
func JoinStates(states []LetterState) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// ParseStates decodes a comma-joined result string
func ParseStates(s string) ([]LetterState, error) {
	if s == "" {
		return nil, fmt.Errorf("empty result")
	}
	parts := strings.Split(s, ",")
	states := make([]LetterState, len(parts))
	for i, p := range parts {
		switch st := LetterState(p); st {
		case StateCorrect, StatePresent, StateAbsent:
			states[i] = st
		default:
			return nil, fmt.Errorf("unknown letter state %q", p)
		}
	}
	return states, nil
}
