// Package wasmhost drives a compiled yalp wasm module with wazero.  A Client
// plays the part of the foreign host: it stages commands in module memory,
// calls the module's exports, and reads back result text.
package wasmhost

import (
	"context"
	"io"
	"os"

	"github.com/luthersystems/yalp/pkg/boundary"
	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
)

// StartFunction initializes a reactor module.
const StartFunction = "_initialize"

// Option configures a Client.
type Option func(*Client) error

// WithLogger makes the client log to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithStderr sends the module's stderr to w.  Module output is discarded by
// default.
func WithStderr(w io.Writer) Option {
	return func(c *Client) error {
		c.stderr = w
		return nil
	}
}

// Client hosts one instance of a compiled module with a single session.  A
// Client is not safe for concurrent use.
type Client struct {
	runtime wazero.Runtime
	module  api.Module
	funcs   map[string]api.Function
	session uint32
	stderr  io.Writer
	logger  *zap.Logger
}

// Open reads and instantiates the module at path.
func Open(ctx context.Context, path string, options ...Option) (*Client, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read module")
	}
	return New(ctx, wasm, options...)
}

// New instantiates a compiled module, runs its initializer, and creates a
// session in it.
func New(ctx context.Context, wasm []byte, options ...Option) (*Client, error) {
	c := &Client{
		stderr: io.Discard,
		logger: zap.NewNop(),
		funcs:  make(map[string]api.Function, len(boundary.Exports)),
	}
	for _, fn := range options {
		err := fn(c)
		if err != nil {
			return nil, err
		}
	}
	c.runtime = wazero.NewRuntime(ctx)
	err := c.instantiate(ctx, wasm)
	if err != nil {
		c.runtime.Close(ctx)
		return nil, err
	}
	res, err := c.call(ctx, boundary.ExportCreate)
	if err != nil {
		c.runtime.Close(ctx)
		return nil, err
	}
	if res == 0 {
		c.runtime.Close(ctx)
		return nil, errors.New("module failed to create a session")
	}
	c.session = res
	c.logger.Debug("wasm session created", zap.Uint32("handle", res))
	return c, nil
}

func (c *Client) instantiate(ctx context.Context, wasm []byte) error {
	wasi_snapshot_preview1.MustInstantiate(ctx, c.runtime)
	compiled, err := c.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return errors.Wrap(err, "unable to compile module")
	}
	config := wazero.NewModuleConfig().
		WithStartFunctions(StartFunction).
		WithStdout(c.stderr).
		WithStderr(c.stderr)
	c.module, err = c.runtime.InstantiateModule(ctx, compiled, config)
	if err != nil {
		return errors.Wrap(err, "unable to instantiate module")
	}
	for _, name := range boundary.Exports {
		fn := c.module.ExportedFunction(name)
		if fn == nil {
			return errors.Errorf("module does not export %s", name)
		}
		c.funcs[name] = fn
	}
	return nil
}

func (c *Client) call(ctx context.Context, name string, params ...uint32) (uint32, error) {
	args := make([]uint64, len(params))
	for i, p := range params {
		args[i] = api.EncodeU32(p)
	}
	res, err := c.funcs[name].Call(ctx, args...)
	if err != nil {
		return 0, errors.Wrapf(err, "%s failed", name)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return api.DecodeU32(res[0]), nil
}

// Exec executes cmd in the client's session and returns the result text.
func (c *Client) Exec(ctx context.Context, cmd string) (string, error) {
	n := uint32(len(cmd))
	addr, err := c.call(ctx, boundary.ExportReserve, n)
	if err != nil {
		return "", err
	}
	if addr == 0 {
		return "", errors.Errorf("unable to reserve %d bytes", n)
	}
	if !c.module.Memory().Write(addr, []byte(cmd)) {
		return "", errors.Errorf("command buffer out of range: %#x", addr)
	}
	result, err := c.call(ctx, boundary.ExportExec, addr, n, c.session)
	if _, rerr := c.call(ctx, boundary.ExportRelease, addr, n); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return "", err
	}
	return c.take(ctx, boundary.ExportExec, result)
}

// ListBindings returns the names bound in the client's session.
func (c *Client) ListBindings(ctx context.Context) (string, error) {
	result, err := c.call(ctx, boundary.ExportListBindings, c.session)
	if err != nil {
		return "", err
	}
	return c.take(ctx, boundary.ExportListBindings, result)
}

// take reads the length-prefixed result at addr and releases it.
func (c *Client) take(ctx context.Context, op string, addr uint32) (string, error) {
	if addr == 0 {
		return "", errors.Errorf("%s returned no result", op)
	}
	mem := c.module.Memory()
	n, ok := mem.ReadUint32Le(addr)
	if !ok {
		return "", errors.Errorf("result address out of range: %#x", addr)
	}
	b, ok := mem.Read(addr+boundary.TextPrefixSize, n)
	if !ok {
		return "", errors.Errorf("result text out of range: %#x+%d", addr, n)
	}
	text := string(b)
	_, err := c.call(ctx, boundary.ExportReleaseText, addr)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Close frees the client's session and shuts down the module.
func (c *Client) Close(ctx context.Context) error {
	_, err := c.call(ctx, boundary.ExportFree, c.session)
	cerr := c.runtime.Close(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(cerr, "unable to close runtime")
}
