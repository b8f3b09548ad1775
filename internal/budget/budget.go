// Package budget provides token budget estimation for LLM calls. Because the
// pipeline supports multiple chat backends with different tokenizers it uses
// conservative text-based heuristics: 1 token per 4 characters for context
// sizing, and 2 tokens per word when sizing a translation output budget.
package budget

import (
	"strings"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// context estimation. 4 chars/token is standard for English prose and
	// deliberately under-estimates to leave headroom.
	charsPerToken = 4

	// translationTokensPerWord sizes the output budget for a translation
	// request. Doubling the source word count reduces truncation risk on
	// languages that expand when rendered in English.
	translationTokensPerWord = 2

	// DefaultCompletionCeiling is the hard per-request output token ceiling
	// assumed for a chat backend when the operator has not configured one.
	DefaultCompletionCeiling = 4096
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// Words returns the number of whitespace-separated words in s.
func Words(s string) int {
	return len(strings.Fields(s))
}

// TranslationTokens returns the output token budget for translating text:
// twice the word count, clamped to [1, ceiling]. A non-positive ceiling
// falls back to DefaultCompletionCeiling.
func TranslationTokens(text string, ceiling int) int {
	if ceiling <= 0 {
		ceiling = DefaultCompletionCeiling
	}
	n := Words(text) * translationTokensPerWord
	if n < 1 {
		n = 1
	}
	if n > ceiling {
		n = ceiling
	}
	return n
}

// FitsTranslationCeiling reports whether text can be translated in a single
// request without its output budget being clamped by the ceiling. Callers
// split oversized texts and translate the pieces separately.
func FitsTranslationCeiling(text string, ceiling int) bool {
	if ceiling <= 0 {
		ceiling = DefaultCompletionCeiling
	}
	return Words(text)*translationTokensPerWord <= ceiling
}
