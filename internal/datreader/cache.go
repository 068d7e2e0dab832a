package datreader

import (
	"context"
	"errors"
	"hash/maphash"

	"github.com/dgryski/go-tinylfu"
)

// A Cached wraps a Reader with an in-memory page cache, so that the
// many small reads of a directory walk do not each become a network
// round trip. Pages are aligned, fixed-size windows of the backing
// object; admission is governed by TinyLFU. The cache lives only as
// long as the Cached itself.
//
// The tail of the object usually falls short of a full page; requests
// that hit it bypass the cache and go straight to the backing reader.
type Cached struct {
	r        Reader
	pageSize uint32
	cache    *tinylfu.T[uint32, []byte]
}

var seed = maphash.MakeSeed()

func pageHash(k uint32) uint64 { return maphash.Comparable(seed, k) }

// NewCached caches up to pages pages of pageSize bytes each over r.
func NewCached(r Reader, pageSize uint32, pages int) *Cached {
	return &Cached{
		r:        r,
		pageSize: pageSize,
		cache:    tinylfu.New[uint32, []byte](pages, pages*10, pageHash),
	}
}

func (c *Cached) ReadRange(ctx context.Context, offset uint32, length int) ([]byte, error) {
	out := make([]byte, 0, length)
	for len(out) < length {
		at := offset + uint32(len(out))
		page, err := c.page(ctx, at/c.pageSize)
		if errors.Is(err, ErrShortRead) {
			// Past the last whole page; read the remainder directly.
			rest, err := c.r.ReadRange(ctx, at, length-len(out))
			if err != nil {
				return nil, err
			}
			return append(out, rest...), nil
		} else if err != nil {
			return nil, err
		}
		out = append(out, page[at%c.pageSize:]...)
	}
	return out[:length], nil
}

func (c *Cached) page(ctx context.Context, n uint32) ([]byte, error) {
	if b, ok := c.cache.Get(n); ok {
		return b, nil
	}
	b, err := c.r.ReadRange(ctx, n*c.pageSize, int(c.pageSize))
	if err != nil {
		return nil, err
	}
	c.cache.Add(n, b)
	return b, nil
}
