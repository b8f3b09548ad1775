package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/docuquest/docrag-go/internal/answer"
	"github.com/docuquest/docrag-go/internal/logging"
)

// handleQuery handles POST /api/query. The question is answered from the
// indexed documents; the response carries the generated answer and the
// citations of the chunks it was grounded in.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.queriesTotal.WithLabelValues("rejected").Inc()
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	topK := 0
	if req.TopK != nil {
		if *req.TopK <= 0 {
			s.metrics.queriesTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "top_k must be positive", http.StatusBadRequest)
			return
		}
		topK = *req.TopK
	}

	res, err := s.answerer.Ask(r.Context(), req.Question, topK)
	elapsed := time.Since(start)
	if err != nil {
		switch {
		case errors.Is(err, answer.ErrEmptyQuestion):
			s.metrics.queriesTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "question is required", http.StatusBadRequest)
		case errors.Is(err, answer.ErrInvalidTopK):
			s.metrics.queriesTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "top_k must be positive", http.StatusBadRequest)
		default:
			s.metrics.queriesTotal.WithLabelValues("error").Inc()
			s.metrics.queryDurationSeconds.WithLabelValues("error").Observe(elapsed.Seconds())
			log.Error("query: answering failed", slog.Any("error", err))
			// Retrieval and completion failures are upstream collaborator
			// failures, not faults in this service.
			http.Error(w, "failed to answer question", http.StatusBadGateway)
		}
		return
	}

	s.metrics.queriesTotal.WithLabelValues("ok").Inc()
	s.metrics.queryDurationSeconds.WithLabelValues("ok").Observe(elapsed.Seconds())

	writeJSON(w, r, http.StatusOK, res)
}
