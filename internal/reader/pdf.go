package reader

import (
	"context"
	"log"
	"strings"

	"github.com/gen2brain/go-fitz"

	"fiscos/internal/port"
)

// PDFReader extracts plain text from uploaded documents. PDF pages are read
// with go-fitz; plain text uploads pass through unchanged. Any extraction
// failure yields an empty string: the pipeline downstream treats empty text as
// an all-defaults document rather than an error.
type PDFReader struct{}

// New creates a PDFReader.
func New() port.DocumentReader {
	return &PDFReader{}
}

func (r *PDFReader) ExtractText(ctx context.Context, data []byte, contentType string) string {
	if len(data) == 0 {
		return ""
	}
	if contentType == "text/plain" {
		return strings.TrimSpace(string(data))
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		log.Printf("reader.ExtractText: failed to open document: %v", err)
		return ""
	}
	defer func() { _ = doc.Close() }()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if ctx.Err() != nil {
			return ""
		}
		pageText, err := doc.Text(i)
		if err != nil {
			log.Printf("reader.ExtractText: failed to extract page %d: %v", i+1, err)
			continue
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
	}

	return strings.TrimSpace(b.String())
}
