package boundary

import (
	"encoding/binary"
	"math"

	"github.com/luthersystems/yalp/pkg/yalp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Option configures a Module.
type Option func(*Module) error

// WithLogger makes a Module log contract violations to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Module) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		m.logger = logger
		return nil
	}
}

// WithSessionOptions configures every session the Module creates.
func WithSessionOptions(options ...yalp.Option) Option {
	return func(m *Module) error {
		m.sessionOptions = append(m.sessionOptions, options...)
		return nil
	}
}

// Module implements the boundary operations over a Memory.  Every operation
// validates its handle and addresses before acting.  A contract violation is
// logged and returned as an error wrapping one of the package's sentinel
// errors, and never reaches a session.  Module is not safe for concurrent
// use.
type Module struct {
	mem            Memory
	sessions       *Registry
	sessionOptions []yalp.Option
	logger         *zap.Logger
}

// NewModule returns a Module that exchanges buffers through mem.
func NewModule(mem Memory, options ...Option) (*Module, error) {
	if mem == nil {
		return nil, errors.New("nil memory")
	}
	m := &Module{
		mem:      mem,
		sessions: NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, fn := range options {
		err := fn(m)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Memory returns the module memory.
func (m *Module) Memory() Memory {
	return m.mem
}

// Sessions returns the number of live sessions.
func (m *Module) Sessions() int {
	return m.sessions.Len()
}

// Create bootstraps a new session and returns its handle.
func (m *Module) Create() (Handle, error) {
	s, err := yalp.New(append([]yalp.Option{yalp.WithLogger(m.logger)}, m.sessionOptions...)...)
	if err != nil {
		m.logger.Error("session bootstrap failed", zap.Error(err))
		return 0, errors.Wrap(err, "create")
	}
	h, err := m.sessions.Add(s)
	if err != nil {
		m.logger.Error("session registration failed", zap.Error(err))
		return 0, errors.Wrap(err, "create")
	}
	m.logger.Debug("session created", zap.Uint32("handle", uint32(h)))
	return h, nil
}

// Free destroys the session for h.
func (m *Module) Free(h Handle) error {
	err := m.sessions.Remove(h)
	if err != nil {
		return m.violation("free", err)
	}
	m.logger.Debug("session freed", zap.Uint32("handle", uint32(h)))
	return nil
}

// Exec runs the n byte command at addr in the session for h and returns
// the address of the length-prefixed result text.  The command buffer
// remains owned by the host.
//
// The result buffer is reserved after the command runs, since its size is
// not known before.  If that reservation fails Exec returns an error wrapping
// ErrOutOfMemory, but the command has still taken effect: its definitions
// and the :last binding remain in the session.  The host can recover the
// value by executing :last once memory is available.
func (m *Module) Exec(addr uint32, n uint32, h Handle) (uint32, error) {
	s, err := m.sessions.Get(h)
	if err != nil {
		return 0, m.violation("exec", err)
	}
	cmd, err := m.mem.View(addr, n)
	if err != nil {
		return 0, m.violation("exec", err)
	}
	result := s.Exec(string(cmd))
	return m.writeText("exec", result)
}

// ListBindings returns the address of the length-prefixed list of variable
// names bound in the session for h.
func (m *Module) ListBindings(h Handle) (uint32, error) {
	s, err := m.sessions.Get(h)
	if err != nil {
		return 0, m.violation("list_bindings", err)
	}
	return m.writeText("list_bindings", s.ListBindings())
}

// Reserve reserves a buffer for the host.
func (m *Module) Reserve(size uint32) (uint32, error) {
	addr, err := m.mem.Reserve(size)
	if err != nil {
		return 0, m.violation("reserve", err)
	}
	return addr, nil
}

// Release returns a buffer reserved by the host or a result buffer handed to
// it.
func (m *Module) Release(addr uint32, size uint32) error {
	err := m.mem.Release(addr, size)
	if err != nil {
		return m.violation("release", err)
	}
	return nil
}

// ReleaseText releases the length-prefixed text buffer at addr.
func (m *Module) ReleaseText(addr uint32) error {
	n, err := m.textLen(addr)
	if err != nil {
		return m.violation("release_text", err)
	}
	return m.Release(addr, TextPrefixSize+n)
}

// ReadText returns a copy of the length-prefixed text at addr.
func (m *Module) ReadText(addr uint32) (string, error) {
	n, err := m.textLen(addr)
	if err != nil {
		return "", err
	}
	b, err := m.mem.View(addr, TextPrefixSize+n)
	if err != nil {
		return "", err
	}
	return string(b[TextPrefixSize:]), nil
}

func (m *Module) textLen(addr uint32) (uint32, error) {
	b, err := m.mem.View(addr, TextPrefixSize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *Module) writeText(op string, text string) (uint32, error) {
	if uint64(len(text)) > math.MaxUint32-TextPrefixSize {
		return 0, m.violation(op, errors.Wrapf(ErrOutOfMemory, "result of %d bytes", len(text)))
	}
	n := uint32(len(text))
	addr, err := m.mem.Reserve(TextPrefixSize + n)
	if err != nil {
		m.logger.Error("unable to reserve result", zap.String("op", op), zap.Error(err))
		return 0, errors.Wrap(err, op)
	}
	b, err := m.mem.View(addr, TextPrefixSize+n)
	if err != nil {
		return 0, errors.Wrap(err, op)
	}
	binary.LittleEndian.PutUint32(b, n)
	copy(b[TextPrefixSize:], text)
	return addr, nil
}

func (m *Module) violation(op string, err error) error {
	m.logger.Warn("boundary contract violation", zap.String("op", op), zap.Error(err))
	return errors.Wrap(err, op)
}
