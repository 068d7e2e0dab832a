package dat

import (
	"encoding/binary"
	"fmt"

	"github.com/amoeba/libac-go/internal/datreader"
)

// Every reassembled entry buffer opens with a 32-bit little-endian
// framing identifier, then a type-specific payload.
//
// DecodeFrame splits the buffer for the variant the caller has
// already selected from the object id class; it does not re-classify.
// Variants this module does not know fail with
// ErrUnsupportedEntryType.
func DecodeFrame(kind Kind, buf []byte) (id uint32, payload []byte, err error) {
	switch kind {
	case KindTexture:
	default:
		return 0, nil, fmt.Errorf("%w: %v", ErrUnsupportedEntryType, kind)
	}
	if len(buf) < 4 {
		return 0, nil, fmt.Errorf("%w: entry shorter than its framing identifier", datreader.ErrShortRead)
	}
	return binary.LittleEndian.Uint32(buf), buf[4:], nil
}
