package dat

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amoeba/libac-go/internal/datreader"
)

// The whole stack over a real HTTP round trip: header, walk, chain
// reassembly and framing, against the same archive served from
// memory.
func TestArchiveOverHTTP(t *testing.T) {
	b := newBuilder(64)

	// A texture-class entry: framing identifier then a payload that
	// spans several blocks.
	payload := make([]byte, 0, 4+300)
	payload = binary.LittleEndian.AppendUint32(payload, 0x06000042)
	for i := 0; i < 300; i++ {
		payload = append(payload, byte(i))
	}
	texOff := b.writeChain(payload)

	other := []byte("opaque bytes of some unclassified entry")
	otherOff := b.writeChain(other)

	root := b.writeNode(nil, []Entry{
		{ObjectID: 0x06000042, FileOffset: texOff, FileSize: uint32(len(payload))},
		{ObjectID: 0x0A000001, FileOffset: otherOff, FileSize: uint32(len(other))},
	})
	b.writeHeader(root)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "test.dat", time.Unix(0, 0), bytes.NewReader(b.buf))
	}))
	defer srv.Close()

	remote, err := datreader.OpenHTTP(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)

	for name, r := range map[string]datreader.Reader{
		"memory": b.reader(),
		"http":   remote,
		"cached": datreader.NewCached(remote, 128, 16),
	} {
		db, err := Open(context.Background(), r)
		require.NoError(t, err, name)

		entries, err := db.List(context.Background(), true)
		require.NoError(t, err, name)
		require.Len(t, entries, 2, name)

		e, err := db.Find(context.Background(), 0x06000042)
		require.NoError(t, err, name)
		require.Equal(t, KindTexture, e.Kind(), name)

		buf, err := db.ReadEntry(context.Background(), e)
		require.NoError(t, err, name)
		require.Equal(t, payload, buf, name)

		id, rest, err := DecodeFrame(KindTexture, buf)
		require.NoError(t, err, name)
		require.Equal(t, uint32(0x06000042), id, name)
		require.Len(t, rest, 300, name)
	}
}
