package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxExtractor extracts paragraph text from DOCX (and legacy .doc uploads
// that are really OOXML) documents. A DOCX file is a ZIP archive whose main
// body lives in word/document.xml; paragraphs are <w:p> elements containing
// <w:t> text runs.
type docxExtractor struct{}

// Extract returns the document body text, one line per paragraph.
func (docxExtractor) Extract(_ string, data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: open archive: %w", err)
	}

	var body io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			body, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("docx: open document.xml: %w", err)
			}
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("docx: word/document.xml not found")
	}
	defer body.Close()

	text, err := paragraphText(body)
	if err != nil {
		return "", fmt.Errorf("docx: parse document.xml: %w", err)
	}
	return text, nil
}

// paragraphText walks the document XML token stream, collecting the character
// data of every <w:t> run and emitting a newline at each paragraph boundary.
func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		b      strings.Builder
		inText bool
		first  = true
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if !first {
					b.WriteString("\n")
				}
				first = false
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
