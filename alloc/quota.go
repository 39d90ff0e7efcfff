package alloc

import (
	"math"
	"sync"

	"github.com/wippyai/wasm-gc/errors"
)

// firstOffset keeps 0 free to mean "no allocation".
const firstOffset = 8

// Quota is an allocator that only accounts for bytes. Offsets are unique
// for the allocator's lifetime but address no memory.
type Quota struct {
	mu    sync.Mutex
	next  uint64
	used  uint64
	limit uint64
}

// NewQuota returns a Quota that fails once more than limit bytes are live.
// A limit of 0 means unlimited.
func NewQuota(limit uint64) *Quota {
	return &Quota{next: firstOffset, limit: limit}
}

// Alloc reserves size bytes aligned to align.
func (q *Quota) Alloc(size, align uint32) (uint32, error) {
	if err := checkAlign(align); err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && q.used+uint64(size) > q.limit {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
	}
	ptr := alignUp(q.next, uint64(align))
	end := ptr + uint64(max(size, 1))
	if end > math.MaxUint32 {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
	}
	q.next = end
	q.used += uint64(size)
	return uint32(ptr), nil
}

// Free releases size bytes of budget.
func (q *Quota) Free(_, size, _ uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if uint64(size) > q.used {
		q.used = 0
		return
	}
	q.used -= uint64(size)
}

// Used returns the number of live bytes.
func (q *Quota) Used() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}

// Limit returns the byte budget, 0 if unlimited.
func (q *Quota) Limit() uint64 {
	return q.limit
}

func checkAlign(align uint32) error {
	if align == 0 || align&(align-1) != 0 {
		return errors.InvalidInput(errors.PhaseAlloc, "alignment must be a power of two")
	}
	return nil
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
