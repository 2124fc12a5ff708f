// Package pagecount probes local PDF files for their page count, used
// to estimate batch totals before any document is submitted.
package pagecount

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

// Ensure Counter implements the interface.
var _ driven.PageCounter = (*Counter)(nil)

// Counter reads page counts from PDF files on disk.
type Counter struct{}

// NewCounter creates a local PDF page counter.
func NewCounter() *Counter {
	return &Counter{}
}

// CountPages returns the number of pages in the PDF at path.
func (c *Counter) CountPages(path string) (n int, err error) {
	// The parser panics on some malformed files; a probe failure must
	// surface as an error, not take the batch down.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return reader.NumPage(), nil
}
