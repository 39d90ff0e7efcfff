package gctype

import (
	"fmt"

	"go.uber.org/zap"

	wasmgc "github.com/wippyai/wasm-gc"
	"github.com/wippyai/wasm-gc/alloc"
	"github.com/wippyai/wasm-gc/errors"
)

const (
	minSetCapacity = 8
	setSlotSize    = 8
	setSlotAlign   = 8
)

// Owned is a reference-type descriptor whose storage is charged to an
// allocator until Free is called.
type Owned struct {
	Ref   *RefType
	alloc wasmgc.Allocator
	ptr   uint32
	size  uint32
	align uint32
}

// Ptr returns the allocator offset of the stored copy, 0 if unaccounted.
func (o *Owned) Ptr() uint32 { return o.ptr }

// Free returns the copy's storage to its allocator.
func (o *Owned) Free() {
	if o.alloc == nil || o.ptr == 0 {
		return
	}
	o.alloc.Free(o.ptr, o.size, o.align)
	o.ptr = 0
}

// Duplicate returns an independent copy of ref with storage charged to a.
// When a also exposes linear memory the copy's fixed encoding is written
// there. A nil allocator yields an unaccounted copy.
func Duplicate(a wasmgc.Allocator, ref *RefType) (*Owned, error) {
	if err := checkRef(ref); err != nil {
		return nil, err
	}
	cp := &RefType{Heap: ref.Heap, Nullable: ref.Nullable}
	if a == nil {
		return &Owned{Ref: cp}, nil
	}

	code := cp.Code()
	size, align := RefTypeSize(code), refTypeAlign(code)
	ptr, err := a.Alloc(size, align)
	if err != nil {
		Logger().Warn("reference type allocation failed",
			zap.Stringer("type", cp),
			zap.Uint32("size", size),
			zap.Error(err))
		return nil, errors.Wrap(errors.PhaseCanon, errors.KindAllocation, err, "duplicate "+cp.String())
	}
	o := &Owned{Ref: cp, alloc: a, ptr: ptr, size: size, align: align}

	if ma, ok := a.(wasmgc.MemoryAllocator); ok {
		enc, err := EncodeRefType(cp)
		if err == nil {
			err = ma.Memory().Write(ptr, enc)
		}
		if err != nil {
			o.Free()
			return nil, errors.Wrap(errors.PhaseCanon, errors.KindInvalidData, err, "store "+cp.String())
		}
	}
	return o, nil
}

// checkRef enforces the construction-boundary contract: a well-formed heap
// type whose concrete index resolves in a bound table.
func checkRef(ref *RefType) error {
	if ref == nil {
		return errors.NilPointer(errors.PhaseCanon, []string{"ref"}, "*gctype.RefType")
	}
	switch h := ref.Heap.(type) {
	case nil:
		return errors.NilPointer(errors.PhaseCanon, []string{"ref", "heap"}, "gctype.HeapType")
	case AbstractHeap:
		if !h.Valid() {
			return errors.InvalidData(errors.PhaseCanon, []string{"ref", "heap"}, fmt.Sprintf("invalid heap type %d", int32(h)))
		}
		return nil
	}
	ch, ok := concreteOf(ref.Heap)
	if !ok {
		return errors.Unsupported(errors.PhaseCanon, fmt.Sprintf("heap type %T", ref.Heap))
	}
	if ch.Table == nil {
		return errors.InvalidInput(errors.PhaseCanon, "heap type "+ref.String()+" is not bound to a table")
	}
	if int(ch.Index) >= ch.Table.Len() {
		return errors.OutOfBounds(errors.PhaseCanon, []string{"ref", "heap"}, int(ch.Index), ch.Table.Len())
	}
	return nil
}

// SetOption configures a canonical set.
type SetOption func(*setConfig)

type setConfig struct {
	alloc wasmgc.Allocator
}

// WithAllocator charges the set's slots and stored descriptors to a.
func WithAllocator(a wasmgc.Allocator) SetOption {
	return func(c *setConfig) {
		c.alloc = a
	}
}

// Set is a canonical set of reference types: structurally equal inserts
// return one shared descriptor. The set owns every descriptor it returns;
// they stay valid until Release.
//
// A Set is not safe for concurrent use.
type Set struct {
	alloc    wasmgc.Allocator
	buckets  map[uint64][]*Owned
	count    int
	capacity int
	slots    uint32 // reserved index budget; entries live in buckets
	released bool
}

// NewSet returns an empty set sized for capacityHint distinct entries. It
// fails only if the allocator cannot reserve the slot table.
func NewSet(capacityHint int, opts ...SetOption) (*Set, error) {
	cfg := setConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.alloc == nil {
		cfg.alloc = alloc.NewQuota(0)
	}

	capacity := max(capacityHint, minSetCapacity)
	slots, err := cfg.alloc.Alloc(uint32(capacity*setSlotSize), setSlotAlign)
	if err != nil {
		Logger().Warn("canonical set allocation failed", zap.Int("capacity", capacity), zap.Error(err))
		return nil, errors.Wrap(errors.PhaseCanon, errors.KindAllocation, err, "create canonical set")
	}
	return &Set{
		alloc:    cfg.alloc,
		buckets:  make(map[uint64][]*Owned, capacity),
		capacity: capacity,
		slots:    slots,
	}, nil
}

// Insert returns the set's descriptor structurally equal to ref, storing a
// copy of ref first if there is none. ref itself is never retained. On error
// the set is unchanged.
func (s *Set) Insert(ref *RefType) (*RefType, error) {
	if s.released {
		return nil, errors.Closed(errors.PhaseCanon, "canonical set")
	}
	if err := checkRef(ref); err != nil {
		return nil, err
	}

	h := HashRefType(ref)
	for _, o := range s.buckets[h] {
		if RefTypesEqual(o.Ref, ref) {
			return o.Ref, nil
		}
	}

	o, err := Duplicate(s.alloc, ref)
	if err != nil {
		return nil, err
	}
	if s.count == s.capacity {
		if err := s.grow(); err != nil {
			o.Free()
			return nil, err
		}
	}
	s.buckets[h] = append(s.buckets[h], o)
	s.count++
	return o.Ref, nil
}

func (s *Set) grow() error {
	capacity := s.capacity * 2
	slots, err := s.alloc.Alloc(uint32(capacity*setSlotSize), setSlotAlign)
	if err != nil {
		Logger().Warn("canonical set growth failed",
			zap.Int("entries", s.count),
			zap.Int("capacity", capacity),
			zap.Error(err))
		return errors.Wrap(errors.PhaseCanon, errors.KindAllocation, err, "grow canonical set")
	}
	s.alloc.Free(s.slots, uint32(s.capacity*setSlotSize), setSlotAlign)
	Logger().Debug("canonical set grown",
		zap.Int("from", s.capacity),
		zap.Int("to", capacity))
	s.slots = slots
	s.capacity = capacity
	return nil
}

// Lookup returns the set's descriptor equal to ref, if any.
func (s *Set) Lookup(ref *RefType) (*RefType, bool) {
	if s.released || ref == nil {
		return nil, false
	}
	for _, o := range s.buckets[HashRefType(ref)] {
		if RefTypesEqual(o.Ref, ref) {
			return o.Ref, true
		}
	}
	return nil, false
}

// Len returns the number of distinct descriptors stored.
func (s *Set) Len() int { return s.count }

// Cap returns the number of entries the set holds before growing.
func (s *Set) Cap() int { return s.capacity }

// Range calls fn for every stored descriptor until fn returns false.
// The order is unspecified.
func (s *Set) Range(fn func(*RefType) bool) {
	for _, bucket := range s.buckets {
		for _, o := range bucket {
			if !fn(o.Ref) {
				return
			}
		}
	}
}

// Release frees every stored descriptor and the slot table. Descriptors
// returned by Insert must not be used afterwards.
func (s *Set) Release() error {
	if s.released {
		return errors.Closed(errors.PhaseCanon, "canonical set")
	}
	for _, bucket := range s.buckets {
		for _, o := range bucket {
			o.Free()
		}
	}
	s.alloc.Free(s.slots, uint32(s.capacity*setSlotSize), setSlotAlign)
	s.buckets = nil
	s.count = 0
	s.released = true
	return nil
}
