package dat

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/amoeba/libac-go/internal/datreader"
)

// ReadChain reassembles exactly size payload bytes from the block
// chain starting at offset. Every block carries a 4-byte
// little-endian pointer to the next block, then payload; the pointer
// in the final block is ignored.
//
// Pointer and payload are fetched in a single ranged request per
// block, never two: remote backends pay per request.
func ReadChain(ctx context.Context, r datreader.Reader, offset, size, blockSize uint32) ([]byte, error) {
	if blockSize < 8 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidGeometry, blockSize)
	}

	out := make([]byte, 0, size)
	left := size
	cursor := offset
	for left > 0 {
		req := min(blockSize, left+4)
		block, err := r.ReadRange(ctx, cursor, int(req))
		if err != nil {
			return nil, err
		}
		out = append(out, block[4:req]...)
		left -= req - 4
		if left > 0 {
			next := binary.LittleEndian.Uint32(block[:4])
			if next == 0 {
				return nil, fmt.Errorf("%w: %d bytes still owed at %#x", ErrTruncatedChain, left, cursor)
			}
			cursor = next
		}
	}
	return out, nil
}
