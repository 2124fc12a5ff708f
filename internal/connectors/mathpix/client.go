package mathpix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.mathpix.com/v3"

	// DefaultTimeout bounds submission and listing requests.
	DefaultTimeout = 120 * time.Second

	// StatusTimeout bounds a single status poll.
	StatusTimeout = 30 * time.Second

	// StreamTimeout bounds a whole streaming session.
	StreamTimeout = 300 * time.Second

	// DownloadTimeout bounds the finished-document download.
	DownloadTimeout = 60 * time.Second
)

// Ensure Client implements the driven ports.
var (
	_ driven.Converter      = (*Client)(nil)
	_ driven.DocumentLister = (*Client)(nil)
)

// Client talks to the Mathpix v3 API. It holds no per-job state; one
// client serves a whole batch.
type Client struct {
	cfg     Config
	base    string
	http    *http.Client
	limiter *RateLimiter
}

// NewClient creates an API client. Deadlines are applied per call, so
// the underlying http.Client carries no global timeout.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:     cfg,
		base:    cfg.baseURL(),
		http:    &http.Client{},
		limiter: NewRateLimiter(),
	}
}

// auth stamps the credential headers onto a request.
func (c *Client) auth(req *http.Request) {
	req.Header.Set("app_id", c.cfg.AppID)
	req.Header.Set("app_key", c.cfg.AppKey)
}

// uploadName returns the filename a document is submitted under.
func (c *Client) uploadName(source string) string {
	if c.cfg.AnonymiseUploads {
		return uuid.NewString() + filepath.Ext(source)
	}
	return filepath.Base(source)
}

// Submit uploads a document for conversion and returns the job ID. The
// streaming option is always set so the job emits live page events.
func (c *Client) Submit(ctx context.Context, source string, options domain.Options) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	file, err := os.Open(source)
	if err != nil {
		return "", &domain.SubmissionError{Source: source, Err: err}
	}
	defer file.Close()

	opts := options.Clone()
	opts["streaming"] = true
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return "", &domain.SubmissionError{Source: source, Err: fmt.Errorf("encode options: %w", err)}
	}

	// Pipe the multipart body so large documents never sit in memory.
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("file", c.uploadName(source))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = form.WriteField("options_json", string(optsJSON))
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/pdf", pr)
	if err != nil {
		return "", &domain.SubmissionError{Source: source, Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &domain.SubmissionError{Source: source, Err: err}
	}
	defer resp.Body.Close()
	c.limiter.UpdateFromResponse(resp)

	if resp.StatusCode != http.StatusOK {
		return "", &domain.SubmissionError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Err:        errors.New(statusDetail(resp)),
		}
	}

	var body submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &domain.SubmissionError{Source: source, Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.PDFID == "" {
		detail := body.Error
		if detail == "" {
			detail = "no job identifier in response"
		}
		return "", &domain.SubmissionError{Source: source, Err: errors.New(detail)}
	}
	return body.PDFID, nil
}

// Status fetches one remote status snapshot.
func (c *Client) Status(ctx context.Context, jobID string) (domain.JobStatus, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.JobStatus{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, StatusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/pdf/"+jobID, nil)
	if err != nil {
		return domain.JobStatus{}, &domain.StatusError{JobID: jobID, Err: err}
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.JobStatus{}, &domain.StatusError{JobID: jobID, Err: err}
	}
	defer resp.Body.Close()
	c.limiter.UpdateFromResponse(resp)

	if resp.StatusCode != http.StatusOK {
		return domain.JobStatus{}, &domain.StatusError{
			JobID: jobID,
			Err:   fmt.Errorf("HTTP %d: %s", resp.StatusCode, statusDetail(resp)),
		}
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.JobStatus{}, &domain.StatusError{JobID: jobID, Err: fmt.Errorf("decode response: %w", err)}
	}
	return domain.JobStatus{
		Status:      body.Status,
		PagesTotal:  body.NumPages,
		PagesDone:   body.NumPagesCompleted,
		PercentDone: body.PercentDone,
		ErrorDetail: body.Error,
	}, nil
}

// OpenStream opens the live page event stream for a job. The session
// deadline travels with the returned stream and is released by Close.
func (c *Client) OpenStream(ctx context.Context, jobID string) (driven.PageStream, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithTimeout(ctx, StreamTimeout)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.base+"/pdf/"+jobID+"/stream", nil)
	if err != nil {
		cancel()
		return nil, &domain.StreamError{JobID: jobID, Kind: classifyStreamKind(err), Err: err}
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, &domain.StreamError{JobID: jobID, Kind: classifyStreamKind(err), Err: err}
	}
	c.limiter.UpdateFromResponse(resp)

	if resp.StatusCode != http.StatusOK {
		detail := statusDetail(resp)
		resp.Body.Close()
		cancel()
		return nil, &domain.StreamError{
			JobID: jobID,
			Kind:  domain.StreamHTTPStatus,
			Err:   fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail),
		}
	}

	return newStream(jobID, resp.Body, cancel), nil
}

// DownloadFinal fetches the finished document text. A 404 or an empty
// body means the service has not produced the final artifact.
func (c *Client) DownloadFinal(ctx context.Context, jobID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/pdf/"+jobID+".mmd", nil)
	if err != nil {
		return "", &domain.DownloadError{JobID: jobID, Err: err}
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &domain.DownloadError{JobID: jobID, Err: err}
	}
	defer resp.Body.Close()
	c.limiter.UpdateFromResponse(resp)

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.ErrNotReady
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.DownloadError{
			JobID: jobID,
			Err:   fmt.Errorf("HTTP %d: %s", resp.StatusCode, statusDetail(resp)),
		}
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.DownloadError{JobID: jobID, Err: err}
	}
	if len(text) == 0 {
		return "", domain.ErrNotReady
	}
	return string(text), nil
}

// ListDocuments fetches one page of previously submitted documents.
func (c *Client) ListDocuments(ctx context.Context, query domain.ListQuery) (domain.DocumentPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.DocumentPage{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("page", strconv.Itoa(max(query.Page, 1)))
	params.Set("per_page", strconv.Itoa(max(query.PerPage, 1)))
	if query.FromDate != "" {
		params.Set("from_date", query.FromDate)
	}
	if query.ToDate != "" {
		params.Set("to_date", query.ToDate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/pdf-results?"+params.Encode(), nil)
	if err != nil {
		return domain.DocumentPage{}, fmt.Errorf("list documents: %w", err)
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.DocumentPage{}, fmt.Errorf("list documents: %w", err)
	}
	defer resp.Body.Close()
	c.limiter.UpdateFromResponse(resp)

	if resp.StatusCode != http.StatusOK {
		return domain.DocumentPage{}, fmt.Errorf("list documents: HTTP %d: %s", resp.StatusCode, statusDetail(resp))
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.DocumentPage{}, fmt.Errorf("list documents: decode response: %w", err)
	}

	page := domain.DocumentPage{Documents: make([]domain.RemoteDocument, 0, len(body.PDFs))}
	for _, entry := range body.PDFs {
		page.Documents = append(page.Documents, domain.RemoteDocument{
			ID:         entry.ID,
			InputFile:  entry.InputFile,
			Status:     entry.Status,
			CreatedAt:  entry.CreatedAt,
			PagesTotal: entry.NumPages,
			PagesDone:  entry.NumPagesCompleted,
		})
	}
	return page, nil
}
