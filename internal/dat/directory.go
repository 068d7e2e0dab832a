package dat

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/amoeba/libac-go/internal/datreader"
)

// A directory node is a fixed-size logical record, itself stored as a
// block chain: 62 child pointers, an entry count, then up to 61
// 24-byte entries.
const (
	nodeSize    = 0x6B4
	maxChildren = 62
	maxEntries  = maxChildren - 1
	entrySize   = 24

	// Depth bound guarding against pointer cycles. Far beyond any
	// legal tree: 62^64 entries would not fit in a 32-bit archive.
	maxDepth = 64
)

// Entry identifies one stored sub-file.
type Entry struct {
	BitFlags   uint32
	ObjectID   uint32
	FileOffset uint32 // first physical block of the entry's chain
	FileSize   uint32 // logical byte length after reassembly
	Date       uint32
	Iteration  uint32
}

// Kind classifies an entry purely by its object id range.
type Kind int

const (
	KindUnknown Kind = iota
	KindTexture
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	default:
		return "unknown"
	}
}

func (e Entry) Kind() Kind {
	if e.ObjectID >= 0x06000000 && e.ObjectID <= 0x07FFFFFF {
		return KindTexture
	}
	return KindUnknown
}

// IsIcon reports whether the entry sits in the icon sub-range of the
// texture class.
func (e Entry) IsIcon() bool {
	return e.ObjectID >= 0x06000000 && e.ObjectID <= 0x0600FFFF
}

type node struct {
	children [maxChildren]uint32
	entries  []Entry
}

// A node is a leaf iff its first child pointer is zero; the remaining
// pointers of a leaf are meaningless.
func (n *node) leaf() bool { return n.children[0] == 0 }

func readNode(ctx context.Context, r datreader.Reader, blockSize, offset uint32) (*node, error) {
	buf, err := ReadChain(ctx, r, offset, nodeSize, blockSize)
	if err != nil {
		return nil, err
	}
	return parseNode(buf, offset)
}

func parseNode(buf []byte, offset uint32) (*node, error) {
	le := binary.LittleEndian
	var n node
	for i := range n.children {
		n.children[i] = le.Uint32(buf[4*i:])
	}
	count := le.Uint32(buf[4*maxChildren:])
	if count > maxEntries {
		return nil, fmt.Errorf("%w: node at %#x claims %d entries", ErrInvalidGeometry, offset, count)
	}
	n.entries = make([]Entry, count)
	for i := range n.entries {
		rec := buf[4*maxChildren+4+i*entrySize:]
		n.entries[i] = Entry{
			BitFlags:   le.Uint32(rec[0:]),
			ObjectID:   le.Uint32(rec[4:]),
			FileOffset: le.Uint32(rec[8:]),
			FileSize:   le.Uint32(rec[12:]),
			Date:       le.Uint32(rec[16:]),
			Iteration:  le.Uint32(rec[20:]),
		}
	}
	if !n.leaf() {
		for i := uint32(0); i <= count; i++ {
			if n.children[i] == 0 {
				return nil, fmt.Errorf("%w: internal node at %#x missing child %d", ErrInvalidGeometry, offset, i)
			}
		}
	}
	return &n, nil
}

// walk yields entries in B-tree order: for an internal node with k
// entries, child 0, entry 0, child 1, entry 1, ... child k. A single
// malformed node aborts the walk.
func walk(ctx context.Context, r datreader.Reader, blockSize, offset uint32, depth int, recursive bool, yield func(Entry)) error {
	if depth > maxDepth {
		return ErrCyclicDirectory
	}
	n, err := readNode(ctx, r, blockSize, offset)
	if err != nil {
		return err
	}

	if n.leaf() || !recursive {
		for _, e := range n.entries {
			yield(e)
		}
		return nil
	}

	for i, e := range n.entries {
		if err := walk(ctx, r, blockSize, n.children[i], depth+1, recursive, yield); err != nil {
			return err
		}
		yield(e)
	}
	return walk(ctx, r, blockSize, n.children[len(n.entries)], depth+1, recursive, yield)
}
