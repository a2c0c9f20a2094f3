//go:build wasip1

// Command wasm is the yalp reactor module.  Build it with
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o yalp.wasm ./wasm
//
// Every export takes and returns i32 values and reports failure by returning
// 0.  Failures are logged to stderr.
package main

import (
	"github.com/luthersystems/yalp/pkg/boundary"
	"go.uber.org/zap"
)

var module *boundary.Module

func init() {
	logger := newLogger()
	var err error
	module, err = boundary.NewModule(boundary.NewPinnedMemory(boundary.DefaultMemoryLimit), boundary.WithLogger(logger))
	if err != nil {
		logger.Fatal("unable to initialize module", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	config.Sampling = nil
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

//go:wasmexport create
func create() uint32 {
	h, err := module.Create()
	if err != nil {
		return 0
	}
	return uint32(h)
}

//go:wasmexport free
func free(h uint32) {
	_ = module.Free(boundary.Handle(h))
}

//go:wasmexport exec
func exec(addr uint32, n uint32, h uint32) uint32 {
	result, err := module.Exec(addr, n, boundary.Handle(h))
	if err != nil {
		return 0
	}
	return result
}

//go:wasmexport list_bindings
func listBindings(h uint32) uint32 {
	result, err := module.ListBindings(boundary.Handle(h))
	if err != nil {
		return 0
	}
	return result
}

//go:wasmexport reserve
func reserve(size uint32) uint32 {
	addr, err := module.Reserve(size)
	if err != nil {
		return 0
	}
	return addr
}

//go:wasmexport release
func release(addr uint32, size uint32) {
	_ = module.Release(addr, size)
}

//go:wasmexport release_text
func releaseText(addr uint32) {
	_ = module.ReleaseText(addr)
}

func main() {}
