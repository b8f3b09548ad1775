// Package extract converts uploaded document bytes into plain UTF-8 text.
// It dispatches on the file extension: PDF, DOCX/DOC, and plain-text
// families (txt, md, text) are supported. Extraction is the only local
// CPU-bound step of the ingestion pipeline; everything downstream of it
// operates on the returned text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned when no extractor is registered for the
// file's extension. The server maps it to a 400 response.
var ErrUnsupportedType = errors.New("extract: unsupported file type")

// Extractor converts the raw bytes of one document format into plain text.
type Extractor interface {
	// Extract returns the UTF-8 text content of data. The filename is the
	// original upload name, used only for diagnostics.
	Extract(filename string, data []byte) (string, error)
}

// Registry dispatches extraction by lowercase file extension (without dot).
type Registry struct {
	// extractors maps extension to its extractor.
	extractors map[string]Extractor
}

// NewRegistry returns a Registry with all built-in extractors registered:
// pdf, docx, doc, txt, md, text.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	r.Register("pdf", pdfExtractor{})
	docx := docxExtractor{}
	r.Register("docx", docx)
	r.Register("doc", docx)
	plain := plainExtractor{}
	r.Register("txt", plain)
	r.Register("md", plain)
	r.Register("text", plain)
	return r
}

// Register binds an extension (without dot, case-insensitive) to an extractor.
func (r *Registry) Register(ext string, e Extractor) {
	r.extractors[strings.ToLower(ext)] = e
}

// Extract dispatches to the extractor for filename's extension.
// An unknown extension returns ErrUnsupportedType wrapped with the extension.
func (r *Registry) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	e, ok := r.extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	text, err := e.Extract(filename, data)
	if err != nil {
		return "", fmt.Errorf("extract: %s: %w", filename, err)
	}
	return text, nil
}

// plainExtractor handles txt, md, and text files. Invalid UTF-8 sequences are
// replaced rather than rejected so a document with a stray byte still ingests.
type plainExtractor struct{}

// Extract decodes data as UTF-8, replacing invalid sequences.
func (plainExtractor) Extract(_ string, data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), "�"), nil
}
