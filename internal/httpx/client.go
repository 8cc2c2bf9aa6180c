package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	// RequestTimeout is the default per-attempt bound, used when the injected
	// http.Client carries no timeout of its own.
	RequestTimeout = 15 * time.Second

	backoffBase = 1 * time.Second
	maxJitter   = 500 * time.Millisecond
)

// ErrNotFound marks an explicit upstream absence (HTTP 404). It is terminal
// and never consumes a retry.
var ErrNotFound = errors.New("upstream resource not found")

// UpstreamError is a non-2xx status or an undecodable body. 5xx and malformed
// bodies are retryable; other 4xx are terminal.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upstream %s: status %d", e.URL, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// TransportError is a network-level or timeout failure. Always retryable.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a terminal 404-class failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Client wraps upstream JSON calls with a hard per-attempt timeout and a
// bounded randomized-linear-backoff retry loop. It performs no caching.
type Client struct {
	httpc   *http.Client
	timeout time.Duration
}

// NewClient returns a client backed by httpc, or a default 15s-timeout client
// when nil is passed. The per-attempt context deadline follows the injected
// client's Timeout so configured values above the default take effect.
func NewClient(httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: RequestTimeout}
	}
	timeout := httpc.Timeout
	if timeout <= 0 {
		timeout = RequestTimeout
	}
	return &Client{httpc: httpc, timeout: timeout}
}

// GetJSON fetches rawURL and decodes the response body into v. Transport
// failures, timeouts, 5xx statuses and undecodable bodies are retried up to
// maxRetries times (maxRetries+1 attempts total); 4xx statuses fail
// immediately, with 404 surfaced as ErrNotFound.
func (c *Client) GetJSON(ctx context.Context, rawURL string, maxRetries uint, v any) error {
	return retry.Do(
		func() error { return c.attempt(ctx, rawURL, v) },
		retry.Context(ctx),
		retry.Attempts(maxRetries+1),
		retry.DelayType(linearJitterDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[httpx] retry %d for %s: %v", n+1, rawURL, err)
		}),
	)
}

func (c *Client) attempt(ctx context.Context, rawURL string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &UpstreamError{URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", rawURL, ErrNotFound)
	case resp.StatusCode >= 400:
		return &UpstreamError{URL: rawURL, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &UpstreamError{URL: rawURL, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

// retryable implements the error taxonomy: 404 and other 4xx are terminal,
// everything else (5xx, malformed body, transport) gets another attempt.
func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status == 0 || ue.Status >= 500
	}
	return true
}

// linearJitterDelay waits base*attempt plus up to 500ms of jitter, mirroring
// the providers' tolerance for polite re-polling.
func linearJitterDelay(n uint, _ error, _ *retry.Config) time.Duration {
	return backoffBase*time.Duration(n+1) + time.Duration(rand.Int63n(int64(maxJitter)))
}
