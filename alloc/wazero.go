package alloc

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// LinearConfig configures a wazero-backed allocator.
type LinearConfig struct {
	// InitialPages is the memory size at start in pages (64KB each).
	// 0 means 1 page.
	InitialPages uint32

	// MemoryLimitPages caps the memory in pages. Allocations that would grow
	// past it fail. 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// Wazero is a Linear allocator over the exported memory of a minimal module
// instantiated in its own wazero runtime.
type Wazero struct {
	*Linear
	runtime wazero.Runtime
	module  api.Module
}

// NewWazero starts a runtime holding a single memory and returns an
// allocator over it. Close releases the runtime.
func NewWazero(ctx context.Context, cfg *LinearConfig) (*Wazero, error) {
	var c LinearConfig
	if cfg != nil {
		c = *cfg
	}
	if c.InitialPages == 0 {
		c.InitialPages = 1
	}
	if c.MemoryLimitPages > 0 && c.InitialPages > c.MemoryLimitPages {
		return nil, fmt.Errorf("initial pages %d exceed limit %d", c.InitialPages, c.MemoryLimitPages)
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if c.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(c.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := rt.CompileModule(ctx, memoryModule(c.InitialPages, c.MemoryLimitPages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compile memory module: %w", err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate memory module: %w", err)
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("memory module exports no memory")
	}
	return &Wazero{Linear: NewLinear(mem), runtime: rt, module: mod}, nil
}

// Close releases the module and its runtime.
func (w *Wazero) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}

// memoryModule encodes a module with one memory exported as "memory".
func memoryModule(initial, limit uint32) []byte {
	mem := []byte{0x01}
	if limit > 0 {
		mem = append(mem, 0x01)
		mem = binary.AppendUvarint(mem, uint64(initial))
		mem = binary.AppendUvarint(mem, uint64(limit))
	} else {
		mem = append(mem, 0x00)
		mem = binary.AppendUvarint(mem, uint64(initial))
	}
	export := []byte{0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00}

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, 0x05)
	out = binary.AppendUvarint(out, uint64(len(mem)))
	out = append(out, mem...)
	out = append(out, 0x07)
	out = binary.AppendUvarint(out, uint64(len(export)))
	out = append(out, export...)
	return out
}
