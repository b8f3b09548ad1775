package ingestion

import "testing"

func TestInferMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		filename   string
		wantFormat string
		wantTitle  string
	}{
		{name: "pdf", filename: "annual_report-2024.pdf", wantFormat: "pdf", wantTitle: "annual report 2024"},
		{name: "docx", filename: "User Guide.docx", wantFormat: "word", wantTitle: "User Guide"},
		{name: "legacy doc", filename: "memo.doc", wantFormat: "word", wantTitle: "memo"},
		{name: "markdown", filename: "README.md", wantFormat: "markdown", wantTitle: "README"},
		{name: "plain text", filename: "notes.txt", wantFormat: "plain", wantTitle: "notes"},
		{name: "uppercase extension", filename: "SPEC.PDF", wantFormat: "pdf", wantTitle: "SPEC"},
		{name: "unknown extension", filename: "data.csv", wantFormat: "unknown", wantTitle: "data"},
		{name: "no extension", filename: "Makefile", wantFormat: "unknown", wantTitle: "Makefile"},
		{name: "dotfile", filename: ".env", wantFormat: "unknown", wantTitle: ".env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := InferMetadata(tt.filename)
			if got.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", got.Format, tt.wantFormat)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
		})
	}
}
