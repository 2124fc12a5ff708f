// Package mathpix implements the conversion service client for the
// Mathpix v3 API.
//
// The client turns PDF documents into Mathpix Markdown by submitting
// them for asynchronous processing and retrieving the result either
// over the live NDJSON page stream or, when streaming cannot complete,
// via status polling and the finished-document download.
//
// # Architecture
//
// The package implements two driven ports:
//
//   - [driven.Converter]: Submit, Status, OpenStream, DownloadFinal
//   - [driven.DocumentLister]: ListDocuments
//
// All remote failures are mapped onto the domain error taxonomy before
// they leave this package; callers never see raw HTTP errors.
//
// # Authentication
//
// Every request carries the app_id and app_key headers. Credentials
// come from the environment (MATHPIX_APP_ID, MATHPIX_APP_KEY) or the
// config file; the client itself just sends what it is given.
//
// # Endpoints
//
//   - POST /pdf                submit a document (multipart, options_json)
//   - GET  /pdf/{id}           status snapshot
//   - GET  /pdf/{id}/stream    live NDJSON page events
//   - GET  /pdf/{id}.mmd       finished document text
//   - GET  /pdf-results        listing of submitted documents
//
// # Streaming
//
// The stream endpoint emits one JSON object per line as pages finish
// processing, in service order rather than page order. Each event
// carries page_idx, text, and pdf_selected_len (the page total, which
// may be absent early in the stream). Malformed lines are reported as
// [domain.DecodeError] and skipped; transport failures are classified
// into [domain.StreamError] kinds so the core can decide whether
// already-received pages are salvageable.
//
// # Timeouts
//
// Each operation carries its own deadline: 120s for submission, 30s for
// a status poll, 300s for a whole streaming session, and 60s for the
// finished-document download.
//
// # Rate Limiting
//
// A proactive token bucket spaces requests out; 429 responses update a
// shared retry-after gate that subsequent calls wait on.
package mathpix
