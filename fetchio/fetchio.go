// Package fetchio is the outside-the-core byte-fetcher collaborator:
// the spec's "Byte-fetcher: fetch(url) → {status_code, headers, body}
// | error. Synchronous." contract (§6), plus a default net/http-backed
// implementation grounded on the teacher's
// domwatch/internal/fetcher.Fetcher (HTTP GET only, 10MB body cap,
// functional-option configuration). engine depends only on the
// Fetcher interface, never on this concrete type.
package fetchio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/marrowdock/vellum/requestpolicy"
)

const maxBodyBytes = 10 << 20

// Fetcher performs a single synchronous GET or HEAD and returns a
// requestpolicy.Response, never an error for ordinary HTTP failures —
// those are represented as an error Response (spec §3: "Error" iff
// error is non-empty or status_code == 0).
type Fetcher interface {
	Fetch(ctx context.Context, url string) requestpolicy.Response
}

// HTTPFetcher is the default Fetcher, backed by net/http.
type HTTPFetcher struct {
	client *http.Client
	ua     string
	logger *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient sets a custom HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) { f.ua = ua }
}

// WithLogger sets a custom logger for non-deterministic operational
// events (the fetch itself, not diagnostic.Emitter events).
func WithLogger(l *slog.Logger) Option {
	return func(f *HTTPFetcher) { f.logger = l }
}

// New creates an HTTPFetcher with sensible defaults.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		ua:     "Mozilla/5.0 (compatible; Vellum/1.0)",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch performs an HTTP GET, capping the response body at 10MB.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) requestpolicy.Response {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return requestpolicy.Response{Error: fmt.Sprintf("fetchio: new request: %v", err)}
	}
	req.Header.Set("User-Agent", f.ua)

	resp, err := f.client.Do(req)
	if err != nil {
		return requestpolicy.Response{Error: fmt.Sprintf("fetchio: do: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return requestpolicy.Response{Error: fmt.Sprintf("fetchio: read body: %v", err)}
	}

	headers := requestpolicy.Headers{}
	for k, vs := range resp.Header {
		for _, v := range vs {
			headers.Add(k, v)
		}
	}

	f.logger.Debug("fetchio: fetched", "url", rawURL, "status", resp.StatusCode, "size", len(body))

	return requestpolicy.Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}
}

// Head performs an HTTP HEAD request, discarding the body.
func (f *HTTPFetcher) Head(ctx context.Context, rawURL string) requestpolicy.Response {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return requestpolicy.Response{Error: fmt.Sprintf("fetchio: new head request: %v", err)}
	}
	req.Header.Set("User-Agent", f.ua)

	resp, err := f.client.Do(req)
	if err != nil {
		return requestpolicy.Response{Error: fmt.Sprintf("fetchio: head do: %v", err)}
	}
	resp.Body.Close()

	headers := requestpolicy.Headers{}
	for k, vs := range resp.Header {
		for _, v := range vs {
			headers.Add(k, v)
		}
	}

	return requestpolicy.Response{StatusCode: resp.StatusCode, Headers: headers}
}
