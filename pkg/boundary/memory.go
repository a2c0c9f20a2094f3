// Package boundary is the narrow interface a foreign host uses to drive lisp
// sessions.  The host cannot touch session objects or module memory
// directly.  It holds opaque session handles and exchanges text through
// buffers that it reserves and releases in module memory.
//
// Result text handed to the host is length-prefixed: a 4 byte little-endian
// length followed by that many bytes of UTF-8.  The host owns a result buffer
// until it releases it, either with Release(addr, 4+length) or with
// ReleaseText(addr).
package boundary

import (
	"github.com/pkg/errors"
)

// Errors reported for boundary contract violations.
var (
	ErrInvalidHandle  = errors.New("invalid session handle")
	ErrInvalidAddress = errors.New("invalid address")
	ErrSizeMismatch   = errors.New("release size does not match reservation")
	ErrOutOfMemory    = errors.New("out of memory")
)

// Memory is module memory as seen through the boundary.  Addresses are
// offsets into a 32-bit linear address space and 0 is never a valid
// address.
type Memory interface {
	// Reserve returns the address of an uninitialized buffer of size bytes.
	// Distinct live reservations never overlap, and a zero size reservation
	// returns a valid address distinct from every other live reservation.
	Reserve(size uint32) (uint32, error)
	// Release returns the buffer at addr.  The size must equal the size
	// passed to Reserve.  Unknown addresses and mismatched sizes are
	// rejected without modifying memory.
	Release(addr uint32, size uint32) error
	// View returns the first n bytes of the live buffer at addr.  A view is
	// only valid until the next call to Reserve or Release.
	View(addr uint32, n uint32) ([]byte, error)
}

// DefaultMemoryLimit is the default capacity of module memory in bytes.
const DefaultMemoryLimit = 64 << 20

// TextPrefixSize is the size of the length prefix on result text.
const TextPrefixSize = 4
