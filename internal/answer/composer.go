// Package answer implements the question answering flow: retrieve the most
// relevant chunks for a question, compose a citation-constrained prompt, and
// generate a grounded answer with the chat model.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/docuquest/docrag-go/internal/budget"
	"github.com/docuquest/docrag-go/internal/logging"
	"github.com/docuquest/docrag-go/internal/rag"
)

// ErrEmptyQuestion is returned when the question is blank.
var ErrEmptyQuestion = errors.New("answer: question must not be empty")

// ErrInvalidTopK is returned when the requested result count is negative.
var ErrInvalidTopK = errors.New("answer: top_k must be positive")

const (
	// defaultTopK is the number of chunks retrieved when the caller does not
	// specify one.
	defaultTopK = 3

	// maxAnswerTokens caps the length of the generated answer.
	maxAnswerTokens = 512

	// answerTemperature keeps generation near-deterministic so answers stay
	// grounded in the retrieved context.
	answerTemperature float32 = 0.2

	// noContextAnswer is returned when retrieval finds nothing to ground an
	// answer in. The model is not called in that case.
	noContextAnswer = "I could not find any relevant information in the indexed documents to answer that question."
)

// answerSystemPrompt constrains the model to the retrieved context and fixes
// the citation format to match the labels on the context blocks.
const answerSystemPrompt = "You are a helpful assistant that answers questions about uploaded documents. " +
	"Answer using ONLY the following context. If the context does not contain " +
	"the information needed, say that you do not know. Cite each piece of " +
	"evidence you use in parentheses in the literal format " +
	"(source: filename.pdf – chunk #3)."

// ChatModel is the completion surface the composer needs. The eino chat model
// implementations satisfy it.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Citation identifies one retrieved chunk that grounded the answer.
type Citation struct {
	// Source is the filename the chunk came from ("unknown" when the stored
	// payload is missing it).
	Source string `json:"source"`
	// ChunkIndex is the chunk's position within its document, as a string
	// ("-1" when the stored payload is missing it).
	ChunkIndex string `json:"chunk_index"`
}

// Answer is the result of a question answering run.
type Answer struct {
	// Answer is the generated response text.
	Answer string `json:"answer"`
	// Citations lists the retrieved chunks, in relevance order.
	Citations []Citation `json:"citations"`
}

// Composer wires a retriever and a chat model into the question answering flow.
type Composer struct {
	// retriever finds the chunks most relevant to a question.
	retriever rag.Retriever
	// model generates the final answer.
	model ChatModel
}

// NewComposer constructs a Composer from the provided dependencies.
func NewComposer(retriever rag.Retriever, chatModel ChatModel) (*Composer, error) {
	if retriever == nil {
		return nil, fmt.Errorf("answer: retriever must not be nil")
	}
	if chatModel == nil {
		return nil, fmt.Errorf("answer: chat model must not be nil")
	}
	return &Composer{retriever: retriever, model: chatModel}, nil
}

// Ask answers a question from the indexed documents. A topK of zero selects
// the default; a negative topK is rejected. Retrieval and generation failures
// are returned to the caller — they indicate backend problems, not bad input.
func (c *Composer) Ask(ctx context.Context, question string, topK int) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if topK < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	if topK == 0 {
		topK = defaultTopK
	}

	records, err := c.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("answer: retrieval failed: %w", err)
	}
	if len(records) == 0 {
		return &Answer{Answer: noContextAnswer, Citations: []Citation{}}, nil
	}

	prompt := buildPrompt(question, records)
	logging.FromContext(ctx).Debug("answer: prompt built",
		slog.Int("context_chunks", len(records)),
		slog.Int("estimated_prompt_tokens", budget.Estimate(prompt[0].Content)+budget.Estimate(question)),
	)
	reply, err := c.model.Generate(ctx, prompt,
		model.WithTemperature(answerTemperature),
		model.WithMaxTokens(maxAnswerTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("answer: generation failed: %w", err)
	}

	if reply == nil {
		return nil, fmt.Errorf("answer: model returned no message")
	}
	text := strings.TrimSpace(reply.Content)
	if text == "" {
		return nil, fmt.Errorf("answer: model returned an empty response")
	}

	citations := make([]Citation, 0, len(records))
	for _, rec := range records {
		citations = append(citations, Citation{
			Source:     rec.Source,
			ChunkIndex: strconv.Itoa(rec.ChunkIndex),
		})
	}

	return &Answer{Answer: text, Citations: citations}, nil
}

// buildPrompt assembles the citation-constrained message slice: a system
// message with the grounding instruction and the labeled context blocks,
// followed by the user's question.
func buildPrompt(question string, records []rag.Record) []*schema.Message {
	var sb strings.Builder
	sb.WriteString(answerSystemPrompt)
	sb.WriteString("\n\nContext:\n\n")
	for _, rec := range records {
		fmt.Fprintf(&sb, "(source: %s – chunk #%d)\n%s\n\n", rec.Source, rec.ChunkIndex, rec.Text)
	}

	return []*schema.Message{
		schema.SystemMessage(sb.String()),
		schema.UserMessage(question),
	}
}
