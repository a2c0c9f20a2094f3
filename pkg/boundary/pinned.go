package boundary

import (
	"unsafe"

	"github.com/pkg/errors"
)

// PinnedMemory hands out Go byte slices as linear memory addresses.  The
// addresses are only meaningful to a host where Go pointers are 32 bits wide,
// as in a module built for GOOS=wasip1.  The table keeps every reserved slice
// reachable so the collector leaves it in place until it is released.
// PinnedMemory is not safe for concurrent use.
type PinnedMemory struct {
	bufs   map[uint32][]byte
	limit  uint32
	inUse  uint64
	addrOf func([]byte) uint32
}

var _ Memory = (*PinnedMemory)(nil)

// NewPinnedMemory returns a PinnedMemory that holds at most limit bytes of
// live reservations.
func NewPinnedMemory(limit uint32) *PinnedMemory {
	return &PinnedMemory{
		bufs:   make(map[uint32][]byte),
		limit:  limit,
		addrOf: pointerAddr,
	}
}

func pointerAddr(b []byte) uint32 {
	return uint32(uintptr(unsafe.Pointer(&b[0])))
}

// zero size reservations still take a byte so their address is distinct
func pinnedSize(size uint32) uint64 {
	if size == 0 {
		return 1
	}
	return uint64(size)
}

// Reserve implements Memory.
func (m *PinnedMemory) Reserve(size uint32) (uint32, error) {
	n := pinnedSize(size)
	if n > uint64(m.limit)-m.inUse {
		return 0, errors.Wrapf(ErrOutOfMemory, "reserve %d bytes", size)
	}
	buf := make([]byte, n)
	addr := m.addrOf(buf)
	if addr == 0 {
		return 0, errors.Wrapf(ErrInvalidAddress, "reserve %d bytes: null address", size)
	}
	if _, ok := m.bufs[addr]; ok {
		return 0, errors.Wrapf(ErrInvalidAddress, "reserve %d bytes: address %#x is already reserved", size, addr)
	}
	m.bufs[addr] = buf[:size]
	m.inUse += n
	return addr, nil
}

// Release implements Memory.
func (m *PinnedMemory) Release(addr uint32, size uint32) error {
	buf, ok := m.bufs[addr]
	if !ok {
		return errors.Wrapf(ErrInvalidAddress, "release %#x", addr)
	}
	if uint32(len(buf)) != size {
		return errors.Wrapf(ErrSizeMismatch, "release %#x: size %d (reserved %d)", addr, size, len(buf))
	}
	delete(m.bufs, addr)
	m.inUse -= pinnedSize(size)
	return nil
}

// View implements Memory.
func (m *PinnedMemory) View(addr uint32, n uint32) ([]byte, error) {
	buf, ok := m.bufs[addr]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAddress, "view %#x", addr)
	}
	if n > uint32(len(buf)) {
		return nil, errors.Wrapf(ErrInvalidAddress, "view %#x: %d bytes exceeds reservation of %d", addr, n, len(buf))
	}
	return buf[:n:n], nil
}

// Live returns the number of live reservations.
func (m *PinnedMemory) Live() int {
	return len(m.bufs)
}

// InUse returns the number of bytes held by live reservations.
func (m *PinnedMemory) InUse() int {
	return int(m.inUse)
}
