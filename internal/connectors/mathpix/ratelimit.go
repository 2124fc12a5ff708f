package mathpix

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the proactive throttle rate in requests per
	// second. The API tolerates bursts, but a steady batch run should
	// not lean on that.
	ProactiveRate = 2.0

	// ProactiveBurst allows short request clusters (submit immediately
	// followed by a stream open).
	ProactiveBurst = 4

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// DefaultRetryAfter is assumed when a 429 carries no header.
	DefaultRetryAfter = 5 * time.Second
)

// RateLimiter spaces API requests out and honours 429 responses.
type RateLimiter struct {
	bucket *rate.Limiter

	mu        sync.Mutex
	blockedTo time.Time
}

// NewRateLimiter creates a limiter with the proactive defaults.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(ProactiveRate), ProactiveBurst),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	// 1. Proactive token bucket.
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	// 2. Reactive retry-after gate.
	r.mu.Lock()
	blockedTo := r.blockedTo
	r.mu.Unlock()

	if wait := time.Until(blockedTo); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil
}

// UpdateFromResponse records throttling state from a response. A 429
// pushes the gate forward by the Retry-After header, or a default when
// the header is missing.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}

	delay := DefaultRetryAfter
	if header := resp.Header.Get(HeaderRetryAfter); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			delay = time.Duration(seconds) * time.Second
		}
	}

	r.mu.Lock()
	if until := time.Now().Add(delay); until.After(r.blockedTo) {
		r.blockedTo = until
	}
	r.mu.Unlock()
}
