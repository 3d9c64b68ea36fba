// Package netx holds small HTTP helpers for talking to remote object URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/shareme/internal/common"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Stream is an open remote body. The caller must Close it.
type Stream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

func (s *Stream) Close() error {
	return s.Body.Close()
}

// OpenStream issues a GET to url and returns the unread body. Connection
// failures and non-2xx responses are reported as common.ErrorUpstreamFetch.
// The body is never buffered; a nil client means http.DefaultClient.
func OpenStream(ctx context.Context, client Doer, url string) (*Stream, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUpstreamFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUpstreamFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: fetch failed: %s; body: %s", common.ErrorUpstreamFetch, resp.Status, string(b))
	}

	return &Stream{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}
