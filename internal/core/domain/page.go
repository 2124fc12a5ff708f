package domain

import "strings"

// PageEvent is one unit of converted output pushed over the live stream.
type PageEvent struct {
	// Index is the 1-based page number the text belongs to.
	Index int

	// Text is the converted content for the page. May be empty.
	Text string

	// Total is the job's page count as reported by the service,
	// 0 when the service has not announced it yet.
	Total int
}

// PageSet accumulates streamed pages for a single job. It is owned by
// the conversion of that job and must not be shared across jobs.
//
// Page indexes are 1-based. Re-delivered indexes overwrite the previous
// text (last write wins). The expected total only ever grows: a smaller
// or zero total in a later event never shrinks it.
type PageSet struct {
	pages    map[int]string
	maxIndex int
	expected int
}

// NewPageSet returns an empty PageSet.
func NewPageSet() *PageSet {
	return &PageSet{pages: make(map[int]string)}
}

// Put records the text for a page. Indexes below 1 are never part of
// the assembled document and are dropped.
func (s *PageSet) Put(index int, text string) {
	if index < 1 {
		return
	}
	s.pages[index] = text
	if index > s.maxIndex {
		s.maxIndex = index
	}
}

// ObserveTotal folds a service-reported page count into the set.
// It returns true when the expected total changed.
func (s *PageSet) ObserveTotal(total int) bool {
	if total > s.expected {
		s.expected = total
		return true
	}
	return false
}

// Expected returns the page count announced by the service, 0 if unknown.
func (s *PageSet) Expected() int { return s.expected }

// Received returns the number of distinct pages recorded so far.
func (s *PageSet) Received() int { return len(s.pages) }

// Has reports whether a page index has been recorded.
func (s *PageSet) Has(index int) bool {
	_, ok := s.pages[index]
	return ok
}

// Complete reports whether the document can be considered fully
// reconstructed: the total is known and every page from 1 through the
// total is present.
func (s *PageSet) Complete() bool {
	if s.expected == 0 {
		return false
	}
	for i := 1; i <= s.expected; i++ {
		if _, ok := s.pages[i]; !ok {
			return false
		}
	}
	return true
}

// Materialise assembles the document in page order: pages 1 through the
// highest index seen, concatenated directly. Page text carries its own
// trailing whitespace, so no separator is inserted; a gap contributes
// nothing but keeps later pages in position.
func (s *PageSet) Materialise() string {
	var b strings.Builder
	for i := 1; i <= s.maxIndex; i++ {
		b.WriteString(s.pages[i])
	}
	return b.String()
}

// StreamOutcome summarises one pass of live stream reconstruction.
type StreamOutcome struct {
	// PagesReceived is how many distinct pages arrived on the stream.
	PagesReceived int

	// PagesTotal is the last expected total, 0 if never announced.
	PagesTotal int

	// DecodeFailures counts malformed events that were skipped.
	DecodeFailures int

	// Complete is true when every page from 1 through PagesTotal arrived.
	Complete bool
}
