package language

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/docuquest/docrag-go/internal/budget"
)

// translationSystemPrompt pins the model into pure translation mode.
const translationSystemPrompt = "You are a translation engine."

// translationInstruction precedes the text to translate. The wording is
// deliberately strict: the output must be the translation and nothing else,
// since it is chunked and embedded verbatim.
const translationInstruction = "Translate the following text to fluent English. " +
	"Maintain meaning exactly. " +
	"Do not add any commentary - only output the translation.\n\n"

// Translator converts text to the canonical language.
type Translator interface {
	// Translate returns text rendered in the canonical language.
	Translate(ctx context.Context, text string) (string, error)
}

// ChatModel is the completion surface the translator needs. Any eino chat
// model satisfies it; tests inject a fake.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// LLMTranslator implements Translator on top of a chat model. The output
// token budget is sized at twice the source word count and capped at the
// model's per-request ceiling; texts over the ceiling are split into word
// windows, translated piecewise, and reassembled in order.
type LLMTranslator struct {
	// model is the chat backend performing the translation.
	model ChatModel
	// ceiling is the hard per-request output token limit of the backend.
	ceiling int
}

// NewLLMTranslator constructs an LLMTranslator. A non-positive ceiling falls
// back to budget.DefaultCompletionCeiling.
func NewLLMTranslator(m ChatModel, ceiling int) (*LLMTranslator, error) {
	if m == nil {
		return nil, fmt.Errorf("language: chat model must not be nil")
	}
	if ceiling <= 0 {
		ceiling = budget.DefaultCompletionCeiling
	}
	return &LLMTranslator{model: m, ceiling: ceiling}, nil
}

// Translate renders text in the canonical language, splitting it into
// pieces first when a single request would overflow the output ceiling.
func (t *LLMTranslator) Translate(ctx context.Context, text string) (string, error) {
	if budget.FitsTranslationCeiling(text, t.ceiling) {
		return t.translateOne(ctx, text)
	}

	pieces := splitWords(text, t.ceiling/2)
	out := make([]string, 0, len(pieces))
	for i, piece := range pieces {
		translated, err := t.translateOne(ctx, piece)
		if err != nil {
			return "", fmt.Errorf("piece %d/%d: %w", i+1, len(pieces), err)
		}
		out = append(out, translated)
	}
	return strings.Join(out, "\n"), nil
}

// translateOne issues a single translation request for text.
func (t *LLMTranslator) translateOne(ctx context.Context, text string) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(translationSystemPrompt),
		schema.UserMessage(translationInstruction + text),
	}

	resp, err := t.model.Generate(ctx, msgs,
		model.WithTemperature(0),
		model.WithMaxTokens(budget.TranslationTokens(text, t.ceiling)),
	)
	if err != nil {
		return "", fmt.Errorf("language: translation request failed: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("language: translation returned empty content")
	}
	return strings.TrimSpace(resp.Content), nil
}

// splitWords partitions text into windows of at most maxWords words,
// preserving order. Word boundaries only; a window never splits a word.
func splitWords(text string, maxWords int) []string {
	if maxWords < 1 {
		maxWords = 1
	}
	words := strings.Fields(text)
	var pieces []string
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
	}
	return pieces
}
