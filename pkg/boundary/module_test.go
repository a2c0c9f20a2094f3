package boundary

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/luthersystems/yalp/pkg/prelude"
	"github.com/luthersystems/yalp/pkg/yalp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s1, err := yalp.New(yalp.WithPrelude(nil))
	require.NoError(t, err)
	s2, err := yalp.New(yalp.WithPrelude(nil))
	require.NoError(t, err)

	h1, err := r.Add(s1)
	require.NoError(t, err)
	h2, err := r.Add(s2)
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h1)
	assert.Equal(t, Handle(2), h2)
	assert.Equal(t, 2, r.Len())

	s, err := r.Get(h2)
	require.NoError(t, err)
	assert.Same(t, s2, s)

	require.NoError(t, r.Remove(h1))
	_, err = r.Get(h1)
	assert.True(t, errors.Is(err, ErrInvalidHandle), "%v", err)
	err = r.Remove(h1)
	assert.True(t, errors.Is(err, ErrInvalidHandle), "%v", err)
	_, err = r.Get(0)
	assert.True(t, errors.Is(err, ErrInvalidHandle), "%v", err)

	// handles are not reused
	h3, err := r.Add(s1)
	require.NoError(t, err)
	assert.Equal(t, Handle(3), h3)

	_, err = r.Add(nil)
	assert.Error(t, err)
}

func newTestModule(t *testing.T, options ...Option) (*Module, *Arena) {
	t.Helper()
	a := NewArena(DefaultMemoryLimit)
	m, err := NewModule(a, options...)
	require.NoError(t, err)
	return m, a
}

// stage writes cmd into a newly reserved buffer the way a host would.
func stage(t *testing.T, m *Module, cmd string) uint32 {
	t.Helper()
	addr, err := m.Reserve(uint32(len(cmd)))
	require.NoError(t, err)
	b, err := m.Memory().View(addr, uint32(len(cmd)))
	require.NoError(t, err)
	copy(b, cmd)
	return addr
}

func TestModule(t *testing.T) {
	m, a := newTestModule(t)
	h, err := m.Create()
	require.NoError(t, err)
	assert.NotZero(t, h)

	cmd := "(add 2 3)"
	addr := stage(t, m, cmd)
	result, err := m.Exec(addr, uint32(len(cmd)), h)
	require.NoError(t, err)
	text, err := m.ReadText(result)
	require.NoError(t, err)
	assert.Equal(t, "5", text)

	// the command buffer still belongs to the host
	b, err := a.View(addr, uint32(len(cmd)))
	require.NoError(t, err)
	assert.Equal(t, cmd, string(b))

	// results can be released with their full size
	prefix, err := a.View(result, TextPrefixSize)
	require.NoError(t, err)
	n := binary.LittleEndian.Uint32(prefix)
	assert.Equal(t, uint32(1), n)
	require.NoError(t, m.Release(result, TextPrefixSize+n))
	require.NoError(t, m.Release(addr, uint32(len(cmd))))

	result, err = m.ListBindings(h)
	require.NoError(t, err)
	text, err = m.ReadText(result)
	require.NoError(t, err)
	assert.Equal(t, "closure, add, mult, filter, map, not, >, and, append, range, sort, or, zip, map2, reverse, !!, foldr, :last", text)
	require.NoError(t, m.ReleaseText(result))

	require.NoError(t, m.Free(h))
	assert.Equal(t, 0, m.Sessions())
	assert.Equal(t, 0, a.Live())
}

func TestModule_sessionsAreIndependent(t *testing.T) {
	m, _ := newTestModule(t, WithSessionOptions(yalp.WithPrelude(nil)))
	h1, err := m.Create()
	require.NoError(t, err)
	h2, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	cmd := "(define x 1)"
	addr := stage(t, m, cmd)
	result, err := m.Exec(addr, uint32(len(cmd)), h1)
	require.NoError(t, err)
	require.NoError(t, m.ReleaseText(result))

	result, err = m.ListBindings(h2)
	require.NoError(t, err)
	text, err := m.ReadText(result)
	require.NoError(t, err)
	assert.Equal(t, "", text)
	require.NoError(t, m.ReleaseText(result))

	result, err = m.Exec(addr, uint32(len(cmd)), h2)
	require.NoError(t, err)
	text, err = m.ReadText(result)
	require.NoError(t, err)
	assert.Equal(t, "1", text)
}

func TestModule_contractViolations(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m, a := newTestModule(t, WithLogger(zap.New(core)))
	h, err := m.Create()
	require.NoError(t, err)

	cmd := "(add1 1)"
	addr := stage(t, m, cmd)

	_, err = m.Exec(addr, uint32(len(cmd)), h+1)
	assert.True(t, errors.Is(err, ErrInvalidHandle), "%v", err)
	_, err = m.Exec(addr, uint32(len(cmd))+1, h)
	assert.True(t, errors.Is(err, ErrInvalidAddress), "%v", err)
	_, err = m.Exec(addr+8, 1, h)
	assert.True(t, errors.Is(err, ErrInvalidAddress), "%v", err)
	_, err = m.ListBindings(0)
	assert.True(t, errors.Is(err, ErrInvalidHandle), "%v", err)

	err = m.Release(addr, 1)
	assert.True(t, errors.Is(err, ErrSizeMismatch), "%v", err)
	err = m.ReleaseText(12345)
	assert.True(t, errors.Is(err, ErrInvalidAddress), "%v", err)
	_, err = m.Reserve(DefaultMemoryLimit)
	assert.True(t, errors.Is(err, ErrOutOfMemory), "%v", err)

	// only the staged command is live
	assert.Equal(t, 1, a.Live())

	require.NoError(t, m.Free(h))
	err = m.Free(h)
	assert.True(t, errors.Is(err, ErrInvalidHandle), "%v", err)
	_, err = m.Exec(addr, uint32(len(cmd)), h)
	assert.True(t, errors.Is(err, ErrInvalidHandle), "%v", err)

	assert.Equal(t, 9, logs.FilterMessage("boundary contract violation").Len())
}

func TestModule_createFailure(t *testing.T) {
	m, a := newTestModule(t, WithSessionOptions(yalp.WithPrelude([]prelude.Definition{
		{Source: "(define x y)"},
	})))
	h, err := m.Create()
	assert.Error(t, err)
	assert.Zero(t, h)
	assert.Equal(t, 0, m.Sessions())
	assert.Equal(t, 0, a.Live())
}

func TestNewModule(t *testing.T) {
	_, err := NewModule(nil)
	assert.Error(t, err)
	_, err = NewModule(NewArena(64), WithLogger(nil))
	assert.Error(t, err)
}

func TestHost(t *testing.T) {
	ctx := context.Background()
	a := NewArena(DefaultMemoryLimit)
	h, err := NewHost(a)
	require.NoError(t, err)

	out, err := h.Exec(ctx, "(sort (list 3 1 2))")
	require.NoError(t, err)
	assert.Equal(t, "(1 2 3)", out)
	out, err = h.Exec(ctx, ":last")
	require.NoError(t, err)
	assert.Equal(t, "(1 2 3)", out)
	out, err = h.Exec(ctx, "(add 2")
	require.NoError(t, err)
	assert.Equal(t, "Parse error: command:1:1: unmatched (", out)
	out, err = h.Exec(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Parse error: command:1:1: no expression in input", out)

	names, err := h.ListBindings(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "foldr, :last")

	// the host leaves nothing reserved between calls
	assert.Equal(t, 0, a.Live())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = h.Exec(cctx, "1")
	assert.Error(t, err)

	require.NoError(t, h.Close())
	assert.Error(t, h.Close())
	_, err = h.Exec(ctx, "1")
	assert.True(t, errors.Is(err, ErrInvalidHandle), "%v", err)
	assert.Equal(t, 0, a.Live())
}

func TestModule_execResultOutOfMemory(t *testing.T) {
	a := NewArena(256)
	m, err := NewModule(a, WithSessionOptions(yalp.WithPrelude(nil)))
	require.NoError(t, err)
	h, err := m.Create()
	require.NoError(t, err)

	cmd := "(define x (list 1 2))"
	addr := stage(t, m, cmd)
	// leave 8 bytes, less than the 12 needed by the result (1 2)
	filler, err := m.Reserve(256 - 8 - 24 - 8)
	require.NoError(t, err)

	_, err = m.Exec(addr, uint32(len(cmd)), h)
	assert.True(t, errors.Is(err, ErrOutOfMemory), "%v", err)

	// the command ran even though its result was lost
	require.NoError(t, m.Release(filler, 256-8-24-8))
	last := stage(t, m, ":last")
	result, err := m.Exec(last, 5, h)
	require.NoError(t, err)
	text, err := m.ReadText(result)
	require.NoError(t, err)
	assert.Equal(t, "(1 2)", text)
	require.NoError(t, m.ReleaseText(result))

	result, err = m.ListBindings(h)
	require.NoError(t, err)
	text, err = m.ReadText(result)
	require.NoError(t, err)
	assert.Equal(t, "x, :last", text)
}
