package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// TextExtractor reads the embedded text layer of a PDF.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (text string, pages int, err error)
}

// PDFExtractor extracts plain text from PDF bytes using ledongthuc/pdf.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text layer and page count of an in-memory PDF.
// The parser panics on some malformed inputs; those surface as errors.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (text string, pages int, err error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("opening PDF: %w", err)
	}
	pages = reader.NumPage()

	text, err = extractText(reader)
	if err != nil {
		return "", pages, err
	}
	return text, pages, nil
}

// extractText reads all plain text from a pdf.Reader.
func extractText(reader *pdf.Reader) (string, error) {
	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("reading text buffer: %w", err)
	}

	return buf.String(), nil
}
