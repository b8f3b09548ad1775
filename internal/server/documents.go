package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/docuquest/docrag-go/internal/logging"
)

// handleDocuments handles GET /api/documents. It lists every successfully
// ingested document from the ledger. When no ledger is configured the
// listing is empty rather than an error.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	resp := documentsResponse{Documents: []documentInfo{}}

	if s.documents != nil {
		docs, err := s.documents.List(r.Context())
		if err != nil {
			logging.FromContext(r.Context()).Error("documents: list failed", slog.Any("error", err))
			http.Error(w, "failed to list documents", http.StatusInternalServerError)
			return
		}
		for _, d := range docs {
			resp.Documents = append(resp.Documents, documentInfo{
				Filename:         d.Filename,
				TotalChunks:      d.TotalChunks,
				OriginalLanguage: d.OriginalLanguage,
				IngestedAt:       d.IngestedAt.UTC().Format(time.RFC3339),
			})
		}
	}

	writeJSON(w, r, http.StatusOK, resp)
}
