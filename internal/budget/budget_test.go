package budget

import (
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcdefgh", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tc := range cases {
		if got := Estimate(tc.in); got != tc.want {
			t.Errorf("Estimate(%d chars) = %d, want %d", len(tc.in), got, tc.want)
		}
	}
}

func TestTranslationTokens(t *testing.T) {
	t.Parallel()

	if got := TranslationTokens("five little words right here", 0); got != 10 {
		t.Errorf("TranslationTokens(5 words) = %d, want 10", got)
	}
	if got := TranslationTokens("", 0); got != 1 {
		t.Errorf("TranslationTokens(empty) = %d, want 1", got)
	}

	// A 3000-word text wants 6000 tokens but must be clamped to the ceiling.
	long := strings.Repeat("word ", 3000)
	if got := TranslationTokens(long, 0); got != DefaultCompletionCeiling {
		t.Errorf("TranslationTokens(long) = %d, want ceiling %d", got, DefaultCompletionCeiling)
	}
	if got := TranslationTokens(long, 512); got != 512 {
		t.Errorf("TranslationTokens(long, 512) = %d, want 512", got)
	}
}

func TestFitsTranslationCeiling(t *testing.T) {
	t.Parallel()

	if !FitsTranslationCeiling("short text", 0) {
		t.Error("short text should fit the default ceiling")
	}
	if FitsTranslationCeiling(strings.Repeat("word ", 3000), 0) {
		t.Error("3000-word text should not fit the default ceiling")
	}
}
