// Package alloc provides host allocators for the canonical reference-type set.
//
// Quota charges allocations against a byte budget and hands out synthetic
// offsets; it is the default allocator of gctype.Set.
//
// Linear places allocations inside a wazero linear memory. It bump-allocates,
// reuses freed blocks of the same size, and grows the memory one page range at
// a time. When the memory cannot grow the allocation fails with an error that
// matches errors.ErrOutOfMemory:
//
//	w, err := alloc.NewWazero(ctx, &alloc.LinearConfig{MemoryLimitPages: 4})
//	if err != nil {
//		return err
//	}
//	defer w.Close(ctx)
//
//	set, err := gctype.NewSet(64, gctype.WithAllocator(w))
//
// Both allocators are safe for concurrent use.
package alloc
