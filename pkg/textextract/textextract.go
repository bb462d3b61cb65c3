// Package textextract turns uploaded resume files into plain text.
package textextract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrExtractionFailure = errors.New("text extraction failed")
)

// FormatFromFilename maps a file extension to a Format, case-insensitively.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// PageSource exposes a paginated document. Pages are numbered from 1.
type PageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

// PDFOpener parses raw PDF bytes into a PageSource.
type PDFOpener func(data []byte) (PageSource, error)

type Extractor struct {
	openPDF PDFOpener
}

func New() *Extractor {
	return &Extractor{openPDF: openPDF}
}

// NewWithPDFOpener swaps the PDF backend, mainly for tests.
func NewWithPDFOpener(opener PDFOpener) *Extractor {
	return &Extractor{openPDF: opener}
}

// Extract returns the document text. PDF pages are joined with "\n" in page
// order; a page without text contributes an empty string rather than being
// skipped.
func (e *Extractor) Extract(data []byte, format Format) (string, error) {
	switch format {
	case FormatPDF:
		return e.extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ExtractFile is Extract with the format taken from the filename.
func (e *Extractor) ExtractFile(filename string, data []byte) (string, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return "", err
	}
	return e.Extract(data, format)
}

func (e *Extractor) extractPDF(data []byte) (text string, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: pdf parser panic: %v", ErrExtractionFailure, r)
		}
	}()

	doc, err := e.openPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrExtractionFailure, err)
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		pageText, err := doc.PageText(i)
		if err != nil {
			return "", fmt.Errorf("%w: pdf page %d: %v", ErrExtractionFailure, i, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}
