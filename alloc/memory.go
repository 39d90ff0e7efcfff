package alloc

import (
	"github.com/tetratelabs/wazero/api"

	wasmgc "github.com/wippyai/wasm-gc"
	"github.com/wippyai/wasm-gc/errors"
)

// WrapMemory adapts a wazero memory to wasmgc.Memory.
func WrapMemory(mem api.Memory) wasmgc.Memory {
	if mem == nil {
		return nil
	}
	return &Memory{Mem: mem}
}

// Memory adapts wazero api.Memory to the wasmgc.Memory interface.
type Memory struct {
	Mem api.Memory
}

func outOfBounds(op string, offset, length uint32) error {
	return errors.New(errors.PhaseAlloc, errors.KindOutOfBounds).
		Path("memory", op).
		Value(offset).
		Detail("offset=%d, length=%d", offset, length).
		Build()
}

// Read reads bytes from memory.
func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, outOfBounds("read", offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return outOfBounds("write", offset, uint32(len(data)))
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *Memory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, outOfBounds("read", offset, 1)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, outOfBounds("read", offset, 4)
	}
	return v, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (m *Memory) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return outOfBounds("write", offset, 1)
	}
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return outOfBounds("write", offset, 4)
	}
	return nil
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.Mem.Size()
}

var (
	_ wasmgc.Memory      = (*Memory)(nil)
	_ wasmgc.MemorySizer = (*Memory)(nil)
)
