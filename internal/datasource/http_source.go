package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPSource downloads a table over HTTP
type HTTPSource struct {
	client *RateLimitedHTTPClient
	url    string
}

// NewHTTPSource creates a source that fetches url with client
func NewHTTPSource(client *RateLimitedHTTPClient, url string) *HTTPSource {
	return &HTTPSource{client: client, url: url}
}

// Open performs the GET request and returns the response body
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "request failed", err)
	}

	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	status := fmt.Sprintf("status %d", resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewSourceError(s.Name(), ErrCodeNotFound, status, ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, NewSourceError(s.Name(), ErrCodeServerError, status, ErrUnexpectedCode)
	default:
		return nil, NewSourceError(s.Name(), ErrCodeClientError, status, ErrUnexpectedCode)
	}
}

// Name returns the URL
func (s *HTTPSource) Name() string {
	return s.url
}
