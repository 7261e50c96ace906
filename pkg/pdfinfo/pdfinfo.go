// Package pdfinfo extracts basic metadata from PDF bytes.
package pdfinfo

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageCount returns the number of pages in the PDF. Malformed files
// return an error; callers treat page counts as best effort.
func PageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open PDF: %w", err)
	}
	return reader.NumPage(), nil
}
