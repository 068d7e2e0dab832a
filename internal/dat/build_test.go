package dat

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/amoeba/libac-go/internal/datreader"
)

func putU32(p []byte, v uint32) { binary.LittleEndian.PutUint32(p, v) }

// memReader serves ranges from a byte slice.
type memReader []byte

func (m memReader) ReadRange(_ context.Context, offset uint32, length int) ([]byte, error) {
	if int64(offset)+int64(length) > int64(len(m)) {
		return nil, fmt.Errorf("%w: %d bytes at %#x of %d", datreader.ErrShortRead, length, offset, len(m))
	}
	out := make([]byte, length)
	copy(out, m[offset:])
	return out, nil
}

// builder assembles a synthetic archive image in memory.
type builder struct {
	buf       []byte
	blockSize uint32
}

func newBuilder(blockSize uint32) *builder {
	// Leave the header zone in place; chains are appended after it.
	return &builder{buf: make([]byte, headerOffset+headerSize), blockSize: blockSize}
}

func (b *builder) reader() memReader { return memReader(b.buf) }

func (b *builder) place(offset int, p []byte) {
	if need := offset + len(p); need > len(b.buf) {
		b.buf = append(b.buf, make([]byte, need-len(b.buf))...)
	}
	copy(b.buf[offset:], p)
}

func (b *builder) alloc(n int) uint32 {
	off := uint32(len(b.buf))
	b.buf = append(b.buf, make([]byte, n)...)
	return off
}

// writeChain stores payload as a chain of blocks and returns the
// offset of the first one.
func (b *builder) writeChain(payload []byte) uint32 {
	per := int(b.blockSize) - 4
	nblocks := (len(payload) + per - 1) / per
	if nblocks == 0 {
		nblocks = 1
	}
	offsets := make([]uint32, nblocks)
	for i := range offsets {
		offsets[i] = b.alloc(int(b.blockSize))
	}
	for i, off := range offsets {
		next := uint32(0)
		if i+1 < nblocks {
			next = offsets[i+1]
		}
		binary.LittleEndian.PutUint32(b.buf[off:], next)
		chunk := payload[i*per:]
		if len(chunk) > per {
			chunk = chunk[:per]
		}
		copy(b.buf[off+4:], chunk)
	}
	return offsets[0]
}

// writeNode encodes a directory node and stores it as a chain.
func (b *builder) writeNode(children []uint32, entries []Entry) uint32 {
	le := binary.LittleEndian
	buf := make([]byte, nodeSize)
	for i, c := range children {
		le.PutUint32(buf[4*i:], c)
	}
	le.PutUint32(buf[4*maxChildren:], uint32(len(entries)))
	for i, e := range entries {
		rec := buf[4*maxChildren+4+i*entrySize:]
		le.PutUint32(rec[0:], e.BitFlags)
		le.PutUint32(rec[4:], e.ObjectID)
		le.PutUint32(rec[8:], e.FileOffset)
		le.PutUint32(rec[12:], e.FileSize)
		le.PutUint32(rec[16:], e.Date)
		le.PutUint32(rec[20:], e.Iteration)
	}
	return b.writeChain(buf)
}

// writeHeader fills in the fixed header record.
func (b *builder) writeHeader(root uint32) {
	le := binary.LittleEndian
	h := make([]byte, headerSize)
	le.PutUint32(h[0:], 1)            // file_type
	le.PutUint32(h[4:], b.blockSize)  // block_size
	le.PutUint32(h[8:], uint32(len(b.buf)))
	le.PutUint32(h[12:], 1)           // data_set
	le.PutUint32(h[32:], root)        // btree root
	le.PutUint32(h[44:], 1)           // use_lru
	le.PutUint32(h[76:], 2)           // version_minor
	b.place(headerOffset, h)
}
