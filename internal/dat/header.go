package dat

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/amoeba/libac-go/internal/datreader"
)

// The header sits at a fixed offset; everything before it is reserved
// transaction state.
const (
	headerOffset = 0x140
	headerSize   = 88
)

// Header is the fixed-size record at offset 0x140. All integer fields
// are little-endian on disk; VersionMajor is opaque.
type Header struct {
	FileType          uint32
	BlockSize         uint32
	FileSize          uint32
	DataSet           uint32
	DataSubset        uint32
	FreeHead          uint32
	FreeTail          uint32
	FreeCount         uint32
	BTreeRoot         uint32 // absolute offset of the root directory node's first block
	NewLRU            uint32
	OldLRU            uint32
	UseLRU            bool
	MasterMapID       uint32
	EnginePackVersion uint32
	GamePackVersion   uint32
	VersionMajor      [16]byte
	VersionMinor      uint32
}

// ReadHeader reads the archive header through r. Fails with
// ErrInvalidHeader when the backing reader cannot produce the full
// header record.
func ReadHeader(ctx context.Context, r datreader.Reader) (*Header, error) {
	buf, err := r.ReadRange(ctx, headerOffset, headerSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	le := binary.LittleEndian
	h := Header{
		FileType:          le.Uint32(buf[0:]),
		BlockSize:         le.Uint32(buf[4:]),
		FileSize:          le.Uint32(buf[8:]),
		DataSet:           le.Uint32(buf[12:]),
		DataSubset:        le.Uint32(buf[16:]),
		FreeHead:          le.Uint32(buf[20:]),
		FreeTail:          le.Uint32(buf[24:]),
		FreeCount:         le.Uint32(buf[28:]),
		BTreeRoot:         le.Uint32(buf[32:]),
		NewLRU:            le.Uint32(buf[36:]),
		OldLRU:            le.Uint32(buf[40:]),
		UseLRU:            le.Uint32(buf[44:]) == 1,
		MasterMapID:       le.Uint32(buf[48:]),
		EnginePackVersion: le.Uint32(buf[52:]),
		GamePackVersion:   le.Uint32(buf[56:]),
		VersionMinor:      le.Uint32(buf[76:]),
	}
	copy(h.VersionMajor[:], buf[60:76])
	return &h, nil
}

// Kind names the archive variety carried in the DataSet field. The
// retail clients shipped one "portal" archive of shared game objects
// and many "cell" archives of world geography.
func (h Header) Kind() string {
	switch h.DataSet {
	case 1:
		return "portal"
	case 2:
		return "cell"
	default:
		return fmt.Sprintf("unknown(%d)", h.DataSet)
	}
}
