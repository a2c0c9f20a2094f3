package boundary

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

const arenaAlign = 8

// Arena is a portable Memory backed by a growable byte slice.  Buffers are
// allocated first-fit from a free list of released spans which are coalesced
// with their neighbors.  Arena is not safe for concurrent use.
type Arena struct {
	mem   []byte
	limit uint32
	live  map[uint32]uint32 // addr -> reserved size
	free  []span            // sorted by addr, never adjacent
}

type span struct {
	addr uint32
	size uint32
}

func (s span) end() uint32 {
	return s.addr + s.size
}

var _ Memory = (*Arena)(nil)

// NewArena returns an empty Arena that can hold at most limit bytes,
// including alignment padding.
func NewArena(limit uint32) *Arena {
	return &Arena{
		// The first aligned block is never handed out so that address 0 is
		// never valid.
		mem:   make([]byte, arenaAlign),
		limit: limit,
		live:  make(map[uint32]uint32),
	}
}

func blockSize(size uint32) uint32 {
	if size == 0 {
		return arenaAlign
	}
	return (size + arenaAlign - 1) &^ (arenaAlign - 1)
}

// Reserve implements Memory.
func (a *Arena) Reserve(size uint32) (uint32, error) {
	if size > a.limit || size > math.MaxUint32-arenaAlign {
		return 0, errors.Wrapf(ErrOutOfMemory, "reserve %d bytes", size)
	}
	n := blockSize(size)
	for i, s := range a.free {
		if s.size < n {
			continue
		}
		if s.size == n {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i] = span{s.addr + n, s.size - n}
		}
		a.live[s.addr] = size
		return s.addr, nil
	}
	top := uint32(len(a.mem))
	if uint64(top)+uint64(n) > uint64(a.limit) {
		return 0, errors.Wrapf(ErrOutOfMemory, "reserve %d bytes", size)
	}
	a.mem = append(a.mem, make([]byte, n)...)
	a.live[top] = size
	return top, nil
}

// Release implements Memory.
func (a *Arena) Release(addr uint32, size uint32) error {
	reserved, ok := a.live[addr]
	if !ok {
		return errors.Wrapf(ErrInvalidAddress, "release %#x", addr)
	}
	if reserved != size {
		return errors.Wrapf(ErrSizeMismatch, "release %#x: size %d (reserved %d)", addr, size, reserved)
	}
	delete(a.live, addr)
	a.insertFree(span{addr, blockSize(size)})
	return nil
}

func (a *Arena) insertFree(s span) {
	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].addr > s.addr })
	if i > 0 && a.free[i-1].end() == s.addr {
		i--
		s = span{a.free[i].addr, a.free[i].size + s.size}
		a.free = append(a.free[:i], a.free[i+1:]...)
	}
	if i < len(a.free) && s.end() == a.free[i].addr {
		s.size += a.free[i].size
		a.free = append(a.free[:i], a.free[i+1:]...)
	}
	if s.end() == uint32(len(a.mem)) {
		// Give the tail back to the bump region.
		a.mem = a.mem[:s.addr]
		return
	}
	a.free = append(a.free, span{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = s
}

// View implements Memory.
func (a *Arena) View(addr uint32, n uint32) ([]byte, error) {
	size, ok := a.live[addr]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAddress, "view %#x", addr)
	}
	if n > size {
		return nil, errors.Wrapf(ErrInvalidAddress, "view %#x: %d bytes exceeds reservation of %d", addr, n, size)
	}
	return a.mem[addr : addr+n : addr+n], nil
}

// Live returns the number of live reservations.
func (a *Arena) Live() int {
	return len(a.live)
}

// InUse returns the number of bytes spanned by the arena's address space,
// including released spans not yet returned to the tail.
func (a *Arena) InUse() int {
	return len(a.mem) - arenaAlign
}
