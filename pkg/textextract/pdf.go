package textextract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

type pdfDocument struct {
	reader *pdf.Reader
}

func openPDF(data []byte) (PageSource, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &pdfDocument{reader: r}, nil
}

func (d *pdfDocument) NumPage() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) PageText(num int) (string, error) {
	page := d.reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
