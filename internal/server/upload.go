package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/docuquest/docrag-go/internal/extract"
	"github.com/docuquest/docrag-go/internal/ingestion"
	"github.com/docuquest/docrag-go/internal/logging"
)

// multipartMemoryLimit is the in-memory threshold for parsing multipart
// bodies; larger parts spill to temporary files.
const multipartMemoryLimit = 10 << 20

// handleUpload handles POST /api/upload. The document is sent as a multipart
// form with a single "file" part; the part's filename drives format detection
// and chunk identity. Bad uploads (missing file, unsupported type, no
// extractable text) are client errors; embedding and store failures are
// server errors.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.uploadsTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.metrics.uploadsTotal.WithLabelValues("rejected").Inc()
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.metrics.uploadsTotal.WithLabelValues("rejected").Inc()
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.uploadsTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.metrics.uploadsTotal.WithLabelValues("error").Inc()
		log.Error("upload: read failed", slog.Any("error", err))
		http.Error(w, "failed to read upload", http.StatusInternalServerError)
		return
	}

	s.metrics.uploadBytes.Observe(float64(len(data)))

	res, err := s.ingester.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrEmptyFilename):
			s.metrics.uploadsTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "filename is required", http.StatusBadRequest)
		case errors.Is(err, extract.ErrUnsupportedType):
			s.metrics.uploadsTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "unsupported file type", http.StatusBadRequest)
		case errors.Is(err, ingestion.ErrNoText):
			s.metrics.uploadsTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "no text could be extracted from the document", http.StatusBadRequest)
		default:
			s.metrics.uploadsTotal.WithLabelValues("error").Inc()
			log.Error("upload: ingestion failed",
				slog.String("filename", header.Filename),
				slog.Any("error", err),
			)
			// Embedding and vector store failures are upstream collaborator
			// failures, not faults in this service.
			http.Error(w, "ingestion failed", http.StatusBadGateway)
		}
		return
	}

	s.metrics.uploadsTotal.WithLabelValues("ok").Inc()
	s.metrics.uploadChunks.Observe(float64(res.TotalChunks))

	chunks := make([]uploadChunk, 0, len(res.Chunks))
	for _, c := range res.Chunks {
		chunks = append(chunks, uploadChunk{
			ChunkIndex:       c.ChunkIndex,
			Text:             c.Text,
			OriginalLanguage: c.OriginalLanguage,
			Embedding:        c.Embedding,
		})
	}

	writeJSON(w, r, http.StatusOK, uploadResponse{
		Filename:    res.Filename,
		TotalChunks: res.TotalChunks,
		Language:    res.Language,
		Status:      "indexed",
		Chunks:      chunks,
	})
}
