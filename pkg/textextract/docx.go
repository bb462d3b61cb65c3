package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", ErrExtractionFailure, err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%w: docx has no %s", ErrExtractionFailure, docxBodyPart)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrExtractionFailure, docxBodyPart, err)
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", ErrExtractionFailure, docxBodyPart, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// readParagraphs walks WordprocessingML and returns one string per <w:p>.
// Paragraphs nest inside text boxes, so open paragraphs are kept on a stack;
// a nested paragraph is emitted before the one that contains it.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
	)
	write := func(s string) {
		if len(open) > 0 {
			open[len(open)-1].WriteString(s)
		}
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				open = append(open, new(strings.Builder))
			case "t":
				inText = true
			case "tab":
				write("\t")
			case "br", "cr":
				write("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if n := len(open); n > 0 {
					paragraphs = append(paragraphs, open[n-1].String())
					open = open[:n-1]
				}
			}
		case xml.CharData:
			if inText {
				write(string(t))
			}
		}
	}
	return paragraphs, nil
}
