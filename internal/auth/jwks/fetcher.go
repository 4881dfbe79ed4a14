package jwks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxKeySetBytes bounds the JWKS response body.
const maxKeySetBytes = 1 << 20

// Fetcher retrieves a fresh key set from its source.
type Fetcher interface {
	Fetch(ctx context.Context) (*KeySet, error)
}

// HTTPFetcher downloads a JWKS document over HTTP.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher builds a fetcher for url. timeout bounds each request.
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{url: url, client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher. Every failure wraps ErrKeyFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context) (*KeySet, error) {
	if f.url == "" {
		return nil, fmt.Errorf("%w: no key endpoint configured", ErrKeyFetch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrKeyFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrKeyFetch, f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: unexpected status %d", ErrKeyFetch, f.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrKeyFetch, err)
	}
	return Parse(body)
}
