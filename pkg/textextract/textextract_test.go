package textextract_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"go-resume-screener/pkg/textextract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	pages []string
	err   error
}

func (f fakePages) NumPage() int { return len(f.pages) }

func (f fakePages) PageText(num int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.pages[num-1], nil
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Skills: </w:t></w:r><w:r><w:t>Go</w:t><w:tab/><w:t>SQL</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestFormatFromFilename(t *testing.T) {
	t.Run("Should map known extensions case-insensitively", func(t *testing.T) {
		f, err := textextract.FormatFromFilename("CV.PDF")
		require.NoError(t, err)
		assert.Equal(t, textextract.FormatPDF, f)

		f, err = textextract.FormatFromFilename("resume.docx")
		require.NoError(t, err)
		assert.Equal(t, textextract.FormatDOCX, f)
	})

	t.Run("Should reject other extensions", func(t *testing.T) {
		_, err := textextract.FormatFromFilename("resume.txt")
		assert.ErrorIs(t, err, textextract.ErrUnsupportedFormat)
	})
}

func TestExtractPDF(t *testing.T) {
	t.Run("Should join pages with newline and keep empty pages", func(t *testing.T) {
		ex := textextract.NewWithPDFOpener(func(data []byte) (textextract.PageSource, error) {
			return fakePages{pages: []string{"page one", "", "page three"}}, nil
		})
		text, err := ex.Extract([]byte("%PDF-1.4"), textextract.FormatPDF)
		require.NoError(t, err)
		assert.Equal(t, "page one\n\npage three", text)
	})

	t.Run("Should wrap page errors as extraction failure", func(t *testing.T) {
		ex := textextract.NewWithPDFOpener(func(data []byte) (textextract.PageSource, error) {
			return fakePages{pages: []string{"x"}, err: errors.New("bad stream")}, nil
		})
		_, err := ex.Extract([]byte("%PDF-1.4"), textextract.FormatPDF)
		assert.ErrorIs(t, err, textextract.ErrExtractionFailure)
	})

	t.Run("Should convert parser panics into extraction failure", func(t *testing.T) {
		ex := textextract.NewWithPDFOpener(func(data []byte) (textextract.PageSource, error) {
			panic("malformed xref")
		})
		_, err := ex.Extract([]byte("%PDF-1.4"), textextract.FormatPDF)
		assert.ErrorIs(t, err, textextract.ErrExtractionFailure)
	})

	t.Run("Should fail on bytes that are not a PDF", func(t *testing.T) {
		_, err := textextract.New().Extract([]byte("definitely not a pdf document"), textextract.FormatPDF)
		assert.ErrorIs(t, err, textextract.ErrExtractionFailure)
	})
}

func TestExtractDOCX(t *testing.T) {
	ex := textextract.New()

	t.Run("Should return one line per paragraph", func(t *testing.T) {
		text, err := ex.Extract(buildDOCX(t, sampleDocument), textextract.FormatDOCX)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe\nSkills: Go\tSQL", text)
	})

	t.Run("Should keep the text around a text box paragraph", func(t *testing.T) {
		doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Contact: </w:t></w:r><w:r><w:txbxContent><w:p><w:r><w:t>Sidebar</w:t></w:r></w:p></w:txbxContent></w:r><w:r><w:t>jane@example.com</w:t></w:r></w:p>
</w:body></w:document>`
		text, err := ex.Extract(buildDOCX(t, doc), textextract.FormatDOCX)
		require.NoError(t, err)
		assert.Equal(t, "Sidebar\nContact: jane@example.com", text)
	})

	t.Run("Should pick the format from the filename", func(t *testing.T) {
		text, err := ex.ExtractFile("jane.DOCX", buildDOCX(t, sampleDocument))
		require.NoError(t, err)
		assert.Contains(t, text, "Jane Doe")
	})

	t.Run("Should fail on a corrupt archive", func(t *testing.T) {
		_, err := ex.Extract([]byte("PK\x03\x04garbage"), textextract.FormatDOCX)
		assert.ErrorIs(t, err, textextract.ErrExtractionFailure)
	})

	t.Run("Should fail when the body part is missing", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, err := zw.Create("docProps/core.xml")
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = ex.Extract(buf.Bytes(), textextract.FormatDOCX)
		assert.ErrorIs(t, err, textextract.ErrExtractionFailure)
	})
}

func TestExtractUnsupported(t *testing.T) {
	_, err := textextract.New().Extract([]byte("hello"), textextract.Format("rtf"))
	assert.ErrorIs(t, err, textextract.ErrUnsupportedFormat)
}
