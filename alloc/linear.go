package alloc

import (
	"math"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmgc "github.com/wippyai/wasm-gc"
	"github.com/wippyai/wasm-gc/errors"
)

const pageSize = 65536

// Linear allocates inside a linear memory. Freed blocks are kept in per-size
// free lists and reused by later allocations of the same size.
type Linear struct {
	mem  api.Memory
	view *Memory
	free map[uint32][]uint32
	mu   sync.Mutex
	next uint32
	used uint32
}

// NewLinear returns an allocator over mem. Offsets below 8 are never handed
// out.
func NewLinear(mem api.Memory) *Linear {
	return &Linear{
		mem:  mem,
		view: &Memory{Mem: mem},
		free: make(map[uint32][]uint32),
		next: firstOffset,
	}
}

// Memory returns the memory allocations live in.
func (l *Linear) Memory() wasmgc.Memory {
	return l.view
}

// Alloc returns a block of size bytes aligned to align, growing the memory
// when the bump pointer runs past its end.
func (l *Linear) Alloc(size, align uint32) (uint32, error) {
	if err := checkAlign(align); err != nil {
		return 0, err
	}
	if size == 0 {
		size = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if ptr, ok := l.reuse(size, align); ok {
		l.used += size
		return ptr, nil
	}

	ptr := alignUp(uint64(l.next), uint64(align))
	end := ptr + uint64(size)
	if end > math.MaxUint32 {
		Logger().Warn("linear memory exhausted",
			zap.Uint32("size", size),
			zap.Uint64("end", end))
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
	}
	if have := uint64(l.mem.Size()); end > have {
		pages := uint32((end - have + pageSize - 1) / pageSize)
		prev, ok := l.mem.Grow(pages)
		if !ok {
			Logger().Warn("linear memory exhausted",
				zap.Uint32("size", size),
				zap.Uint32("pages", pages),
				zap.Uint64("have", have))
			return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
		}
		Logger().Debug("linear memory grown",
			zap.Uint32("from_pages", prev),
			zap.Uint32("to_pages", prev+pages))
	}
	l.next = uint32(end)
	l.used += size
	return uint32(ptr), nil
}

func (l *Linear) reuse(size, align uint32) (uint32, bool) {
	list := l.free[size]
	for k := len(list) - 1; k >= 0; k-- {
		ptr := list[k]
		if ptr&(align-1) != 0 {
			continue
		}
		list[k] = list[len(list)-1]
		l.free[size] = list[:len(list)-1]
		return ptr, true
	}
	return 0, false
}

// Free returns a block to the free list of its size.
func (l *Linear) Free(ptr, size, _ uint32) {
	if ptr == 0 {
		return
	}
	if size == 0 {
		size = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.free[size] = append(l.free[size], ptr)
	if size > l.used {
		l.used = 0
		return
	}
	l.used -= size
}

// Used returns the number of live bytes.
func (l *Linear) Used() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}
