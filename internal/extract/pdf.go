package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfExtractor extracts text from PDF documents page by page. A page whose
// text cannot be decoded is skipped so one corrupt page does not discard the
// rest of the document.
type pdfExtractor struct{}

// Extract returns the concatenated plain text of all readable PDF pages,
// joined with newlines.
func (pdfExtractor) Extract(_ string, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf: open: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest.
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
