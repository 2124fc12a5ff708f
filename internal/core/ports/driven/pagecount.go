package driven

// PageCounter determines the number of pages in a local document
// without submitting it anywhere.
type PageCounter interface {
	// CountPages returns the page count of the document at path.
	CountPages(path string) (int, error)
}
