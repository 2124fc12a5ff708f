package domain

// ListQuery selects a page of previously submitted documents.
type ListQuery struct {
	// Page is the 1-based result page to fetch.
	Page int

	// PerPage is the number of documents per page.
	PerPage int

	// FromDate and ToDate bound the submission time when non-empty.
	// Both are ISO timestamps, e.g. "2023-01-01T00:00:00.000Z".
	FromDate string
	ToDate   string
}

// RemoteDocument is one document as reported by the conversion service.
type RemoteDocument struct {
	// ID is the service-assigned document identifier.
	ID string

	// InputFile is the filename the document was submitted under.
	InputFile string

	// Status is the raw remote status string.
	Status string

	// CreatedAt is the submission timestamp as reported, unparsed.
	CreatedAt string

	// PagesTotal and PagesDone mirror the remote page counters.
	PagesTotal int
	PagesDone  int
}

// DocumentPage is one page of listing results.
type DocumentPage struct {
	// Documents holds the page contents in service order.
	Documents []RemoteDocument
}
