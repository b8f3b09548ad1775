package language

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docuquest/docrag-go/internal/logging"
)

// Normalizer detects a document's language and translates it to the
// canonical language when needed. Normalization never fails: when the
// translator errors the original text is returned on the fallback path so
// ingestion proceeds on best-effort input.
type Normalizer struct {
	// detector reports the document language from a bounded prefix.
	detector Detector
	// translator renders non-canonical text in the canonical language.
	// May be nil, in which case non-canonical text always takes the
	// fallback path.
	translator Translator
}

// NewNormalizer constructs a Normalizer. translator may be nil to disable
// translation (detection and provenance tagging still run).
func NewNormalizer(detector Detector, translator Translator) (*Normalizer, error) {
	if detector == nil {
		return nil, fmt.Errorf("language: detector must not be nil")
	}
	return &Normalizer{detector: detector, translator: translator}, nil
}

// Normalize returns text in the canonical language together with the
// originally detected language code and the path taken:
//
//   - detected == Canonical: text unchanged, OutcomePassThrough
//   - detected == Unknown: text unchanged, OutcomePassThrough (translating
//     undetectable text is riskier than indexing it as-is)
//   - otherwise: translated text, OutcomeTranslated; on translator failure
//     the original text, OutcomeFallback
func (n *Normalizer) Normalize(ctx context.Context, text string) Result {
	detected := n.detector.Detect(detectionSample(text))

	if detected == Canonical || detected == Unknown {
		return Result{Text: text, Language: detected, Outcome: OutcomePassThrough}
	}

	if n.translator == nil {
		return Result{Text: text, Language: detected, Outcome: OutcomeFallback}
	}

	translated, err := n.translator.Translate(ctx, text)
	if err != nil {
		logging.FromContext(ctx).Warn("language: translation failed, ingesting original text",
			slog.String("detected", detected),
			slog.Any("error", err),
		)
		return Result{Text: text, Language: detected, Outcome: OutcomeFallback}
	}

	return Result{Text: translated, Language: detected, Outcome: OutcomeTranslated}
}
