package answer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/docuquest/docrag-go/internal/logging"
	"github.com/docuquest/docrag-go/internal/rag"
)

type fakeRetriever struct {
	records  []rag.Record
	err      error
	gotQuery string
	gotTopK  int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, topK int) ([]rag.Record, error) {
	f.gotQuery = query
	f.gotTopK = topK
	return f.records, f.err
}

type fakeChatModel struct {
	reply    string
	err      error
	nilReply bool
	messages []*schema.Message
	calls    int
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	f.messages = input
	if f.err != nil {
		return nil, f.err
	}
	if f.nilReply {
		return nil, nil
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func testRecords() []rag.Record {
	return []rag.Record{
		{ID: "manual.pdf_chunk_2", Text: "The warranty lasts two years.", Source: "manual.pdf", ChunkIndex: 2, Score: 0.92},
		{ID: "faq.md_chunk_0", Text: "Returns are accepted within 30 days.", Source: "faq.md", ChunkIndex: 0, Score: 0.81},
	}
}

func TestAsk_ReturnsAnswerWithCitations(t *testing.T) {
	t.Parallel()

	retriever := &fakeRetriever{records: testRecords()}
	chat := &fakeChatModel{reply: "  The warranty lasts two years (source: manual.pdf).  "}
	c, err := NewComposer(retriever, chat)
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	got, err := c.Ask(context.Background(), "How long is the warranty?", 0)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if got.Answer != "The warranty lasts two years (source: manual.pdf)." {
		t.Errorf("answer not trimmed: %q", got.Answer)
	}
	if retriever.gotTopK != 3 {
		t.Errorf("expected default topK 3, got %d", retriever.gotTopK)
	}
	if len(got.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(got.Citations))
	}
	if got.Citations[0].Source != "manual.pdf" || got.Citations[0].ChunkIndex != "2" {
		t.Errorf("citation 0 wrong: %+v", got.Citations[0])
	}
	if got.Citations[1].Source != "faq.md" || got.Citations[1].ChunkIndex != "0" {
		t.Errorf("citation 1 wrong: %+v", got.Citations[1])
	}
}

func TestAsk_PromptContainsLabeledContext(t *testing.T) {
	t.Parallel()

	retriever := &fakeRetriever{records: testRecords()}
	chat := &fakeChatModel{reply: "answer"}
	c, _ := NewComposer(retriever, chat)

	if _, err := c.Ask(context.Background(), "question", 5); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if retriever.gotTopK != 5 {
		t.Errorf("expected explicit topK 5, got %d", retriever.gotTopK)
	}
	if len(chat.messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(chat.messages))
	}
	system := chat.messages[0].Content
	if !strings.Contains(system, "ONLY the following context") {
		t.Error("system message missing grounding instruction")
	}
	if !strings.Contains(system, "in the literal format (source: filename.pdf – chunk #3)") {
		t.Error("system message missing the citation format instruction")
	}
	if !strings.Contains(system, "(source: manual.pdf – chunk #2)") {
		t.Errorf("system message missing chunk label:\n%s", system)
	}
	if !strings.Contains(system, "The warranty lasts two years.") {
		t.Error("system message missing chunk text")
	}
	if chat.messages[1].Content != "question" {
		t.Errorf("user message = %q", chat.messages[1].Content)
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	t.Parallel()

	retriever := &fakeRetriever{}
	chat := &fakeChatModel{}
	c, _ := NewComposer(retriever, chat)

	if _, err := c.Ask(context.Background(), "   ", 0); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
	if retriever.gotQuery != "" || chat.calls != 0 {
		t.Error("expected no collaborator calls for empty question")
	}
}

func TestAsk_NegativeTopK(t *testing.T) {
	t.Parallel()

	c, _ := NewComposer(&fakeRetriever{}, &fakeChatModel{})

	if _, err := c.Ask(context.Background(), "question", -1); !errors.Is(err, ErrInvalidTopK) {
		t.Fatalf("expected ErrInvalidTopK, got %v", err)
	}
}

func TestAsk_NoResultsSkipsModel(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{reply: "should not be used"}
	c, _ := NewComposer(&fakeRetriever{}, chat)

	got, err := c.Ask(context.Background(), "anything indexed?", 0)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if chat.calls != 0 {
		t.Errorf("expected no model call with empty retrieval, got %d", chat.calls)
	}
	if got.Answer != noContextAnswer {
		t.Errorf("unexpected answer: %q", got.Answer)
	}
	if got.Citations == nil || len(got.Citations) != 0 {
		t.Errorf("expected empty non-nil citations, got %#v", got.Citations)
	}
}

func TestAsk_RetrievalFailure(t *testing.T) {
	t.Parallel()

	retriever := &fakeRetriever{err: errors.New("qdrant unavailable")}
	chat := &fakeChatModel{}
	c, _ := NewComposer(retriever, chat)

	if _, err := c.Ask(context.Background(), "question", 0); err == nil {
		t.Fatal("expected error when retrieval fails")
	}
	if chat.calls != 0 {
		t.Error("expected no model call after retrieval failure")
	}
}

func TestAsk_GenerationFailure(t *testing.T) {
	t.Parallel()

	retriever := &fakeRetriever{records: testRecords()}
	chat := &fakeChatModel{err: errors.New("model overloaded")}
	c, _ := NewComposer(retriever, chat)

	if _, err := c.Ask(context.Background(), "question", 0); err == nil {
		t.Fatal("expected error when generation fails")
	}
}

func TestAsk_LogsPromptEstimate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logging.WithLogger(context.Background(), log)

	retriever := &fakeRetriever{records: testRecords()}
	chat := &fakeChatModel{reply: "answer"}
	c, _ := NewComposer(retriever, chat)

	if _, err := c.Ask(ctx, "question", 0); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "estimated_prompt_tokens=") {
		t.Errorf("expected prompt token estimate in debug log, got:\n%s", out)
	}
	if !strings.Contains(out, "context_chunks=2") {
		t.Errorf("expected context chunk count in debug log, got:\n%s", out)
	}
}

func TestAsk_NilModelReply(t *testing.T) {
	t.Parallel()

	retriever := &fakeRetriever{records: testRecords()}
	chat := &fakeChatModel{nilReply: true}
	c, _ := NewComposer(retriever, chat)

	if _, err := c.Ask(context.Background(), "question", 0); err == nil {
		t.Fatal("expected error when the model returns no message")
	}
}

func TestAsk_EmptyModelReply(t *testing.T) {
	t.Parallel()

	retriever := &fakeRetriever{records: testRecords()}
	chat := &fakeChatModel{reply: "   "}
	c, _ := NewComposer(retriever, chat)

	if _, err := c.Ask(context.Background(), "question", 0); err == nil {
		t.Fatal("expected error for empty model reply")
	}
}
