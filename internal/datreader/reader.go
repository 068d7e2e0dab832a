// Package datreader provides uniform random-access reads over the
// places an archive can live: a local file, an HTTP server that
// honours byte-range requests, or an object store.
//
// Every backend implements the same capability, ReadRange, and the
// rest of the module is written against that interface alone. A
// backend owns its handle for its lifetime and is reentrant on that
// handle, but callers serialise access; none of the implementations
// here is safe for concurrent use.
package datreader

import (
	"context"
	"errors"
)

// Reader reads exactly length bytes starting at the absolute offset,
// or fails. A short read is never returned as a success.
//
// Implementations are position independent: successive calls with
// arbitrary offsets behave identically to seeking and reading.
type Reader interface {
	ReadRange(ctx context.Context, offset uint32, length int) ([]byte, error)
}

// Backend error kinds. Backends wrap these with detail; callers test
// with errors.Is.
var (
	ErrNotFound         = errors.New("object not found")
	ErrRangeUnavailable = errors.New("range request refused")
	ErrShortRead        = errors.New("short read")
	ErrTransport        = errors.New("transport failure")
	ErrInvalidOffset    = errors.New("invalid offset")
)
