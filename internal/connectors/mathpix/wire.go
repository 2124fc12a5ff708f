package mathpix

// Wire types for the v3 API. Only the fields the client reads are
// declared; the service sends more.

// submitResponse is the POST /pdf response body.
type submitResponse struct {
	PDFID string `json:"pdf_id"`
	Error string `json:"error"`
}

// statusResponse is the GET /pdf/{id} response body.
type statusResponse struct {
	Status            string  `json:"status"`
	NumPages          int     `json:"num_pages"`
	NumPagesCompleted int     `json:"num_pages_completed"`
	PercentDone       float64 `json:"percent_done"`
	Error             string  `json:"error"`
}

// streamEvent is one NDJSON line on GET /pdf/{id}/stream.
type streamEvent struct {
	PageIdx        int    `json:"page_idx"`
	Text           string `json:"text"`
	PDFSelectedLen int    `json:"pdf_selected_len"`
}

// listResponse is the GET /pdf-results response body.
type listResponse struct {
	PDFs []listEntry `json:"pdfs"`
}

// listEntry is one document in a listing page.
type listEntry struct {
	ID                string `json:"id"`
	InputFile         string `json:"input_file"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
	NumPages          int    `json:"num_pages"`
	NumPagesCompleted int    `json:"num_pages_completed"`
}
