package wasmgc

// Memory represents WASM linear memory
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU32(offset uint32) (uint32, error)
	WriteU8(offset uint32, value uint8) error
	WriteU32(offset uint32, value uint32) error
}

// MemorySizer provides the current size of WASM linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator is the host allocation capability injected into the canonical
// reference-type set. A failed Alloc must return an error and leave no
// allocation behind.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// MemoryAllocator is an Allocator whose pointers address a linear memory.
// Durable descriptor copies are written there in their fixed storage layout.
type MemoryAllocator interface {
	Allocator
	Memory() Memory
}
