package boundary

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

// checkedMemory is a Memory that can report its live reservations.
type checkedMemory interface {
	Memory
	Live() int
	InUse() int
}

// memChecker tracks the expected contents of every live reservation in a
// Memory.  Each buffer is filled with a distinct byte when it is reserved.
type memChecker struct {
	mem   checkedMemory
	align uint32
	addrs []uint32
	bufs  map[uint32]checkedBuf
	fill  byte
}

type checkedBuf struct {
	size uint32
	fill byte
}

func newMemChecker(mem checkedMemory, align uint32) *memChecker {
	return &memChecker{
		mem:   mem,
		align: align,
		bufs:  make(map[uint32]checkedBuf),
	}
}

func (c *memChecker) reserve(size uint32) error {
	addr, err := c.mem.Reserve(size)
	if errors.Is(err, ErrOutOfMemory) {
		return nil
	}
	if err != nil {
		return err
	}
	if addr == 0 || addr%c.align != 0 {
		return fmt.Errorf("bad address %#x", addr)
	}
	if _, ok := c.bufs[addr]; ok {
		return fmt.Errorf("address %#x handed out twice", addr)
	}
	c.fill++
	b, err := c.mem.View(addr, size)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = c.fill
	}
	c.addrs = append(c.addrs, addr)
	c.bufs[addr] = checkedBuf{size, c.fill}
	return nil
}

func (c *memChecker) release(i int) error {
	addr := c.addrs[i]
	buf := c.bufs[addr]
	err := c.mem.Release(addr, buf.size)
	if err != nil {
		return err
	}
	c.addrs = append(c.addrs[:i], c.addrs[i+1:]...)
	delete(c.bufs, addr)
	return nil
}

func (c *memChecker) verify() error {
	if c.mem.Live() != len(c.bufs) {
		return fmt.Errorf("memory has %d live buffers (expected %d)", c.mem.Live(), len(c.bufs))
	}
	for addr, buf := range c.bufs {
		b, err := c.mem.View(addr, buf.size)
		if err != nil {
			return err
		}
		for i := range b {
			if b[i] != buf.fill {
				return fmt.Errorf("buffer %#x corrupted at offset %d", addr, i)
			}
		}
	}
	return nil
}

// run interprets ops as a sequence of reserve and release operations,
// checking every live buffer after each one.
func (c *memChecker) run(ops []byte) error {
	for len(ops) >= 3 {
		op, lo, hi := ops[0], ops[1], ops[2]
		ops = ops[3:]
		var err error
		if op%3 == 0 && len(c.addrs) > 0 {
			err = c.release(int(lo) % len(c.addrs))
		} else {
			err = c.reserve((uint32(lo) | uint32(hi)<<8) % 2048)
		}
		if err != nil {
			return err
		}
		if err := c.verify(); err != nil {
			return err
		}
	}
	for len(c.addrs) > 0 {
		if err := c.release(len(c.addrs) - 1); err != nil {
			return err
		}
	}
	if c.mem.InUse() != 0 {
		return fmt.Errorf("%d bytes in use after releasing everything", c.mem.InUse())
	}
	return nil
}

func addMemorySeeds(f *testing.F) {
	f.Add([]byte{1, 16, 0, 1, 0, 0, 0, 0, 0})
	f.Add([]byte{1, 255, 7, 2, 1, 0, 3, 0, 0, 0, 0, 0})
	f.Add([]byte{1, 8, 0, 1, 8, 0, 1, 8, 0, 0, 1, 0, 0, 0, 0, 1, 24, 0})
}
