package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// StatusError is returned for a response other than 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download: unexpected status %d from %s", e.Code, e.URL)
}

// Transient reports whether the status is worth asking for again.
func (e *StatusError) Transient() bool {
	switch e.Code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// RetryOptions configures Retrying. Zero values take the defaults noted.
type RetryOptions struct {
	// Attempts is the total number of tries including the first. Default: 1,
	// which never retries.
	Attempts int
	// Backoff is the delay before the first retry. Default: 500ms.
	Backoff time.Duration
	// MaxBackoff caps the doubling delay. Default: 10s.
	MaxBackoff time.Duration
	// Jitter spreads each delay by ±Jitter of itself. Default: 0.25.
	// Negative disables it.
	Jitter float64
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.Attempts <= 0 {
		o.Attempts = 1
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 10 * time.Second
	}
	if o.Jitter == 0 {
		o.Jitter = 0.25
	}
	if o.Jitter < 0 {
		o.Jitter = 0
	}
	return o
}

// Retrying wraps a Fetcher and repeats downloads that fail transiently.
type Retrying struct {
	next Fetcher
	opts RetryOptions
}

// WithRetry wraps next with exponential backoff retries.
func WithRetry(next Fetcher, opts RetryOptions) *Retrying {
	return &Retrying{next: next, opts: opts.withDefaults()}
}

// Download tries next until it succeeds, fails permanently, runs out of
// attempts, or ctx is done. The last error is returned.
func (r *Retrying) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt < r.opts.Attempts; attempt++ {
		body, err := r.next.Download(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !Transient(err) || attempt == r.opts.Attempts-1 {
			break
		}

		zap.L().Warn("retrying download",
			zap.String("url", redactURL(rawURL)),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(r.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (r *Retrying) backoff(attempt int) time.Duration {
	d := float64(r.opts.Backoff) * math.Pow(2, float64(attempt))
	if d > float64(r.opts.MaxBackoff) {
		d = float64(r.opts.MaxBackoff)
	}
	if r.opts.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * r.opts.Jitter
	}
	return time.Duration(math.Max(d, 0))
}

var transientMessages = []string{
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"i/o timeout",
	"tls handshake timeout",
	"temporary failure in name resolution",
	"server closed idle connection",
	"unexpected eof",
}

// Transient reports whether err looks like a failure a later attempt could
// get past: a retryable HTTP status, a network timeout, or a dropped
// connection.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	return u.Redacted()
}
