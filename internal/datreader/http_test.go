package datreader

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func corpus() []byte {
	b := make([]byte, 4096)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

// rangeServer honours Range requests through http.ServeContent.
func rangeServer(t *testing.T, contents []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "archive.dat", time.Unix(0, 0), bytes.NewReader(contents))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRangedReads(t *testing.T) {
	data := corpus()
	srv := rangeServer(t, data)

	r, err := OpenHTTP(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), r.Size())

	got, err := r.ReadRange(context.Background(), 100, 50)
	require.NoError(t, err)
	require.Equal(t, data[100:150], got)

	// Idempotence.
	again, err := r.ReadRange(context.Background(), 100, 50)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

// A server that ignores Range and answers 200 with the whole body
// still yields the correct window.
func TestHTTPFullBodyFallback(t *testing.T) {
	data := corpus()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.Write(data)
	}))
	defer srv.Close()

	r, err := OpenHTTP(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)

	got, err := r.ReadRange(context.Background(), 1000, 32)
	require.NoError(t, err)
	require.Equal(t, data[1000:1032], got)
}

func TestHTTPRangeRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Accept-Ranges", "bytes")
			return
		}
		http.Error(w, "no", http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	r, err := OpenHTTP(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = r.ReadRange(context.Background(), 0, 16)
	require.ErrorIs(t, err, ErrRangeUnavailable)
}

func TestHTTPPreflight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Accept-Ranges header at all.
	}))
	defer srv.Close()

	_, err := OpenHTTP(context.Background(), srv.URL, srv.Client())
	require.ErrorIs(t, err, ErrRangeUnavailable)
}

func TestHTTPNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := OpenHTTP(context.Background(), srv.URL+"/nope", srv.Client())
	require.ErrorIs(t, err, ErrNotFound)
}

// Backend equivalence: the same archive served from disk and over
// HTTP produces byte-identical ranges.
func TestBackendEquivalence(t *testing.T) {
	data := corpus()
	srv := rangeServer(t, data)

	h, err := OpenHTTP(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)

	f, err := OpenFile(tempFile(t, data))
	require.NoError(t, err)
	defer f.Close()

	for _, span := range [][2]int{{0, 1}, {0, 4096}, {17, 100}, {4000, 96}, {4095, 1}} {
		off, n := uint32(span[0]), span[1]
		fromFile, err := f.ReadRange(context.Background(), off, n)
		require.NoError(t, err)
		fromHTTP, err := h.ReadRange(context.Background(), off, n)
		require.NoError(t, err)
		require.Equal(t, fromFile, fromHTTP, "range %d+%d", off, n)
	}
}

func TestHTTPOffsetBeyondEnd(t *testing.T) {
	srv := rangeServer(t, corpus())

	r, err := OpenHTTP(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = r.ReadRange(context.Background(), uint32(len(corpus())), 1)
	require.ErrorIs(t, err, ErrInvalidOffset)
}

func TestHTTPShortBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Accept-Ranges", "bytes")
			return
		}
		// Claim a partial response but send too little.
		rng := r.Header.Get("Range")
		require.True(t, strings.HasPrefix(rng, "bytes="))
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("xy"))
	}))
	defer srv.Close()

	r, err := OpenHTTP(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = r.ReadRange(context.Background(), 0, 16)
	require.ErrorIs(t, err, ErrShortRead)
}
