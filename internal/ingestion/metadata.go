package ingestion

import (
	"path/filepath"
	"strings"
)

// InferredMetadata holds the document format and display title inferred from
// an upload filename. This is best-effort presentation metadata — the
// pipeline never rejects a file based on it.
type InferredMetadata struct {
	// Format classifies the document kind (pdf, word, markdown, plain).
	Format string
	// Title is a human-readable title derived from the filename stem.
	Title string
}

// formatByExtension maps lowercase file extensions to our canonical format label.
var formatByExtension = map[string]string{
	".pdf":  "pdf",
	".docx": "word",
	".doc":  "word",
	".md":   "markdown",
	".txt":  "plain",
	".text": "plain",
}

// InferMetadata inspects the upload filename and returns best-effort metadata.
// Unknown extensions yield Format "unknown"; the title falls back to the full
// filename when the stem is empty.
func InferMetadata(filename string) InferredMetadata {
	m := InferredMetadata{Format: "unknown"}

	ext := strings.ToLower(filepath.Ext(filename))
	if format, ok := formatByExtension[ext]; ok {
		m.Format = format
	}

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" {
		m.Title = filename
	} else {
		m.Title = stem
	}
	return m
}
