package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// userAgent identifies the collector to origin servers. A browser-like agent
// keeps feed hosts that reject unknown bots from returning 403s.
const userAgent = "Mozilla/5.0 (compatible; ainews-collector/1.0)"

// maxResponseBytes caps how much of a response body an adapter will read.
const maxResponseBytes = 10 << 20 // 10 MiB

// fetchBody performs a GET request and classifies failures into the source
// error taxonomy: connection problems, 5xx and 429 are transient
// (ErrUnavailable); other non-200 statuses are permanent for this run
// (ErrMalformed).
func fetchBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %w", ErrMalformed, url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", ErrUnavailable, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, url, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: %s returned %d", ErrMalformed, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrUnavailable, url, err)
	}
	return data, nil
}
