package datreader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTP serves ranges from a web server with GET requests carrying a
// Range header. A preflight HEAD request checks that the server
// advertises byte-range support and captures the content length.
//
// Servers that answer a ranged GET with 200 and the whole body are
// tolerated: the requested window is sliced out of the response.
type HTTP struct {
	url    string
	client *http.Client
	size   int64
}

// OpenHTTP probes url with a HEAD request. client may be nil, in
// which case http.DefaultClient is used.
func OpenHTTP(ctx context.Context, url string, client *http.Client) (*HTTP, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: HEAD %s: %s", ErrTransport, url, resp.Status)
	}
	if !strings.Contains(resp.Header.Get("Accept-Ranges"), "bytes") {
		return nil, fmt.Errorf("%w: %s does not accept byte ranges", ErrRangeUnavailable, url)
	}

	return &HTTP{url: url, client: client, size: resp.ContentLength}, nil
}

// Size is the Content-Length reported by the preflight request, or -1
// if the server did not report one.
func (r *HTTP) Size() int64 { return r.size }

func (r *HTTP) ReadRange(ctx context.Context, offset uint32, length int) ([]byte, error) {
	if r.size >= 0 && int64(offset) >= r.size {
		return nil, fmt.Errorf("%w: %#x beyond %d-byte object", ErrInvalidOffset, offset, r.size)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	end := int64(offset) + int64(length) - 1
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, end))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPartialContent:
		buf := make([]byte, length)
		if _, err := io.ReadFull(resp.Body, buf); err != nil {
			return nil, fmt.Errorf("%w: range %d-%d of %s: %v", ErrShortRead, offset, end, r.url, err)
		}
		return buf, nil

	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		// Range ignored, whole body returned: slice our window out.
		if _, err := io.CopyN(io.Discard, resp.Body, int64(offset)); err != nil {
			return nil, fmt.Errorf("%w: range %d-%d of %s: %v", ErrShortRead, offset, end, r.url, err)
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(resp.Body, buf); err != nil {
			return nil, fmt.Errorf("%w: range %d-%d of %s: %v", ErrShortRead, offset, end, r.url, err)
		}
		return buf, nil

	default:
		return nil, fmt.Errorf("%w: GET %s: %s", ErrRangeUnavailable, r.url, resp.Status)
	}
}
