// Package language normalizes document text to the canonical corpus language
// (English) before chunking and embedding. It detects the source language on
// a bounded prefix, translates non-English text through the chat model, and
// reports which path was taken so callers and tests can tell a real
// translation from a degraded fallback.
package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Canonical is the target language code every ingested document is
// normalized to. Embedding-space consistency depends on it: queries are
// asked in English against English chunks.
const Canonical = "en"

// Unknown is the language code reported when detection fails. Undetectable
// text passes through untranslated; feeding it to the translator is more
// likely to corrupt it than to help.
const Unknown = "unknown"

// detectionPrefixRunes bounds how much text is inspected during detection.
// Detection quality saturates quickly and the detector is CPU-bound, so the
// whole document is never scanned.
const detectionPrefixRunes = 2000

// Outcome identifies which normalization path produced the result.
type Outcome int

const (
	// OutcomePassThrough means the text was already canonical (or the
	// language was unknown) and was returned unchanged.
	OutcomePassThrough Outcome = iota
	// OutcomeTranslated means the text was translated to the canonical language.
	OutcomeTranslated
	// OutcomeFallback means translation was attempted but failed, and the
	// original untranslated text was returned so ingestion can continue.
	OutcomeFallback
)

// String returns the lowercase label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeTranslated:
		return "translated"
	case OutcomeFallback:
		return "fallback"
	default:
		return "pass_through"
	}
}

// Result is the output of normalization. Language always carries the
// originally detected code, never the canonical one, so provenance survives
// translation.
type Result struct {
	// Text is the normalized (possibly translated) document text.
	Text string
	// Language is the ISO 639-1 code detected for the original text, or Unknown.
	Language string
	// Outcome records which normalization path was taken.
	Outcome Outcome
}

// Detector reports the language of a text sample.
type Detector interface {
	// Detect returns the lowercase ISO 639-1 code for text, or Unknown when
	// the language cannot be determined.
	Detect(text string) string
}

// LinguaDetector implements Detector using the lingua statistical models.
// Construction is expensive (the models are loaded once); share a single
// instance for the process lifetime.
type LinguaDetector struct {
	// detector is the underlying lingua language detector.
	detector lingua.LanguageDetector
}

// NewLinguaDetector constructs a LinguaDetector covering all languages
// lingua ships models for.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

// Detect returns the lowercase ISO 639-1 code of text, or Unknown when
// detection is inconclusive or the input is blank.
func (d *LinguaDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return Unknown
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// detectionSample returns the bounded prefix of text used for detection.
func detectionSample(text string) string {
	runes := []rune(text)
	if len(runes) <= detectionPrefixRunes {
		return text
	}
	return string(runes[:detectionPrefixRunes])
}
