package model

import (
	"strings"
	"unicode"
)

// SanitizeName strips everything but letters, digits and spaces, collapses
// runs of whitespace, trims, and truncates to MaxNameLength runes
func SanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	if runes := []rune(name); len(runes) > MaxNameLength {
		name = strings.TrimSpace(string(runes[:MaxNameLength]))
	}
	return name
}

// ValidateName sanitizes a display name and rejects names that end up empty
func ValidateName(raw string) (string, error) {
	name := SanitizeName(raw)
	if name == "" {
		return "", NewValidationError("name", "Please enter a name")
	}
	return name, nil
}

// NormalizeCode upper-cases and trims a party code and checks its shape
func NormalizeCode(raw string) (PartyCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != CodeLength {
		return "", NewValidationError("code", "Party codes are 6 characters")
	}
	for _, r := range code {
		if !strings.ContainsRune(CodeAlphabet, r) {
			return "", NewValidationError("code", "Party code contains an invalid character")
		}
	}
	return PartyCode(code), nil
}

// NormalizeWord upper-cases and trims a word
func NormalizeWord(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsWordShape reports whether w is exactly WordLength letters A-Z.
// This is the only check the host applies before relaying a proposed word.
func IsWordShape(w string) bool {
	if len(w) != WordLength {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return false
		}
	}
	return true
}
