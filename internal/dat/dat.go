// Package dat reads the chained-block game archive format: a header
// at a fixed offset, sub-files stored as linked lists of fixed-size
// blocks, and a B-tree directory keyed by numeric object id.
//
// All I/O goes through a datreader.Reader, so the same code runs over
// a local file, an HTTP server or an object store.
package dat

import (
	"context"
	"errors"
	"fmt"

	"github.com/amoeba/libac-go/internal/datreader"
)

// Archive-level error kinds. Backend kinds (short read, not found,
// range refused, transport) surface unchanged from datreader.
var (
	ErrInvalidHeader        = errors.New("invalid archive header")
	ErrInvalidGeometry      = errors.New("invalid archive geometry")
	ErrTruncatedChain       = errors.New("truncated block chain")
	ErrCyclicDirectory      = errors.New("directory traversal depth exceeded")
	ErrUnsupportedEntryType = errors.New("unsupported entry type")
)

// Database is an open archive: a parsed header plus the reader it
// came from. It is not safe for concurrent use; the reader is
// borrowed for the duration of each call.
type Database struct {
	r      datreader.Reader
	header Header
}

// Open reads and validates the archive header. The reader stays owned
// by the caller; closing it invalidates the Database.
func Open(ctx context.Context, r datreader.Reader) (*Database, error) {
	h, err := ReadHeader(ctx, r)
	if err != nil {
		return nil, err
	}
	if h.BlockSize < 8 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidGeometry, h.BlockSize)
	}
	return &Database{r: r, header: *h}, nil
}

func (db *Database) Header() Header { return db.header }

// List enumerates every directory entry reachable from the root node,
// in B-tree order. With recursive false only the root node's own
// entries are returned, for shallow diagnostics.
func (db *Database) List(ctx context.Context, recursive bool) ([]Entry, error) {
	if db.header.BTreeRoot == 0 {
		return nil, nil
	}
	var entries []Entry
	err := walk(ctx, db.r, db.header.BlockSize, db.header.BTreeRoot, 0, recursive, func(e Entry) {
		entries = append(entries, e)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Find locates the entry with the given object id by descending the
// directory B-tree. Fails with datreader.ErrNotFound when the id is
// not present.
func (db *Database) Find(ctx context.Context, objectID uint32) (Entry, error) {
	offset := db.header.BTreeRoot
	for depth := 0; offset != 0; depth++ {
		if depth > maxDepth {
			return Entry{}, ErrCyclicDirectory
		}
		n, err := readNode(ctx, db.r, db.header.BlockSize, offset)
		if err != nil {
			return Entry{}, err
		}
		i := 0
		for i < len(n.entries) && n.entries[i].ObjectID < objectID {
			i++
		}
		if i < len(n.entries) && n.entries[i].ObjectID == objectID {
			return n.entries[i], nil
		}
		if n.leaf() {
			break
		}
		offset = n.children[i]
	}
	return Entry{}, fmt.Errorf("%w: object %#08x", datreader.ErrNotFound, objectID)
}

// ReadEntry reassembles the entry's byte stream by walking its block
// chain. The returned buffer is owned by the caller.
func (db *Database) ReadEntry(ctx context.Context, e Entry) ([]byte, error) {
	return ReadChain(ctx, db.r, e.FileOffset, e.FileSize, db.header.BlockSize)
}
