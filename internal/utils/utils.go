package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// GetMaskedWord converts word to underscores for display, keeping spaces:
// "ice cream" -> "_ _ _   _ _ _ _ _"
func GetMaskedWord(word string) string {
	if word == "" {
		return ""
	}

	masked := make([]string, 0, len(word))
	for _, r := range word {
		if r == ' ' {
			masked = append(masked, " ")
		} else {
			masked = append(masked, "_")
		}
	}
	return strings.Join(masked, " ")
}

// NormalizeGuess trims surrounding whitespace, composes the text (NFC) and
// case-folds it so equal words compare equal regardless of input form.
// A Caser is stateful, so each call gets its own.
func NormalizeGuess(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// MatchesWord reports whether guess is the secret word. An empty word never matches.
func MatchesWord(guess, word string) bool {
	target := NormalizeGuess(word)
	if target == "" {
		return false
	}
	return NormalizeGuess(guess) == target
}
