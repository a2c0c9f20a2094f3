package boundary

import (
	"context"

	"github.com/pkg/errors"
)

// Host drives one session of an in-process Module the way a foreign host
// would: commands are staged in reserved buffers and results are read back
// and released.
type Host struct {
	module  *Module
	session Handle
}

// NewHost creates a Module over mem and a session in it.
func NewHost(mem Memory, options ...Option) (*Host, error) {
	m, err := NewModule(mem, options...)
	if err != nil {
		return nil, err
	}
	h, err := m.Create()
	if err != nil {
		return nil, err
	}
	return &Host{module: m, session: h}, nil
}

// Module returns the module driven by h.
func (h *Host) Module() *Module {
	return h.module
}

// Exec executes cmd in the host's session and returns the result text.
func (h *Host) Exec(ctx context.Context, cmd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := uint32(len(cmd))
	addr, err := h.module.Reserve(n)
	if err != nil {
		return "", err
	}
	b, err := h.module.Memory().View(addr, n)
	if err != nil {
		return "", err
	}
	copy(b, cmd)
	result, err := h.module.Exec(addr, n, h.session)
	if rerr := h.module.Release(addr, n); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return "", err
	}
	return h.take(result)
}

// ListBindings returns the names bound in the host's session.
func (h *Host) ListBindings(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	result, err := h.module.ListBindings(h.session)
	if err != nil {
		return "", err
	}
	return h.take(result)
}

// take reads and releases a result buffer.
func (h *Host) take(addr uint32) (string, error) {
	text, err := h.module.ReadText(addr)
	if err != nil {
		return "", errors.Wrap(err, "read result")
	}
	err = h.module.ReleaseText(addr)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Close frees the host's session.
func (h *Host) Close() error {
	return h.module.Free(h.session)
}
