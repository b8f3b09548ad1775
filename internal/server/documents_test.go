package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docuquest/docrag-go/internal/store"
)

func getDocuments(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	return rec
}

func TestDocuments_Listing(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{docs: []store.Document{
		{Filename: "guide.docx", TotalChunks: 5, OriginalLanguage: "unknown", IngestedAt: time.Unix(1700000000, 0)},
		{Filename: "manual.pdf", TotalChunks: 12, OriginalLanguage: "de", IngestedAt: time.Unix(1700001000, 0)},
	}}
	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, lister, nil)

	rec := getDocuments(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp documentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(resp.Documents))
	}
	if resp.Documents[1].Filename != "manual.pdf" || resp.Documents[1].TotalChunks != 12 {
		t.Errorf("document 1 = %+v", resp.Documents[1])
	}
	if resp.Documents[1].OriginalLanguage != "de" {
		t.Errorf("original_language = %q", resp.Documents[1].OriginalLanguage)
	}
	if _, err := time.Parse(time.RFC3339, resp.Documents[0].IngestedAt); err != nil {
		t.Errorf("ingested_at not RFC 3339: %q", resp.Documents[0].IngestedAt)
	}
}

func TestDocuments_NoLedger(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, nil, nil)

	rec := getDocuments(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp documentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Documents == nil || len(resp.Documents) != 0 {
		t.Errorf("expected empty non-nil listing, got %#v", resp.Documents)
	}
}

func TestDocuments_ListerFailure(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{err: errors.New("database locked")}
	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, lister, nil)

	rec := getDocuments(t, h)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
