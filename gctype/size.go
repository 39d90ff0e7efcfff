package gctype

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/wasm-gc/errors"
)

// RefCode is the leading byte of a reference type in its binary form.
type RefCode byte

const (
	RefCodeFuncRef       RefCode = 0x70
	RefCodeExternRef     RefCode = 0x6F
	RefCodeAnyRef        RefCode = 0x6E
	RefCodeEqRef         RefCode = 0x6D
	RefCodeHTNullable    RefCode = 0x6C
	RefCodeHTNonNullable RefCode = 0x6B
	RefCodeI31Ref        RefCode = 0x6A
	RefCodeRTTN          RefCode = 0x69
	RefCodeRTT           RefCode = 0x68
	RefCodeDataRef       RefCode = 0x67
)

// Storage sizes of the fixed layout written by EncodeRefType.
const (
	refSizeShort = 1
	refSizeHT    = 8
	refSizeRTTN  = 12
	refSizeRTT   = 8
)

// Code returns the binary form of r. Shorthand codes are used where one
// exists; a nil or malformed r yields 0.
func (r *RefType) Code() RefCode {
	if r == nil {
		return 0
	}
	switch h := r.Heap.(type) {
	case RTTNHeap:
		return RefCodeRTTN
	case RTTHeap:
		return RefCodeRTT
	case AbstractHeap:
		if r.Nullable {
			switch h {
			case HeapFunc:
				return RefCodeFuncRef
			case HeapExtern:
				return RefCodeExternRef
			case HeapAny:
				return RefCodeAnyRef
			case HeapEq:
				return RefCodeEqRef
			}
			return RefCodeHTNullable
		}
		switch h {
		case HeapI31:
			return RefCodeI31Ref
		case HeapData:
			return RefCodeDataRef
		}
		return RefCodeHTNonNullable
	case ConcreteHeap:
		if r.Nullable {
			return RefCodeHTNullable
		}
		return RefCodeHTNonNullable
	}
	return 0
}

// IsRefCode reports whether b starts a reference type.
func IsRefCode(b byte) bool {
	return b >= byte(RefCodeDataRef) && b <= byte(RefCodeFuncRef)
}

// IsMultiByteCode reports whether a reference type with code c carries
// operands after its leading byte.
func IsMultiByteCode(c RefCode) bool {
	switch c {
	case RefCodeHTNullable, RefCodeHTNonNullable, RefCodeRTTN, RefCodeRTT:
		return true
	}
	return false
}

// RefTypeSize returns the bytes needed to store a reference type with code c.
// It returns 0 for a byte that is not a reference code.
func RefTypeSize(c RefCode) uint32 {
	switch c {
	case RefCodeHTNullable, RefCodeHTNonNullable:
		return refSizeHT
	case RefCodeRTTN:
		return refSizeRTTN
	case RefCodeRTT:
		return refSizeRTT
	}
	if IsRefCode(byte(c)) {
		return refSizeShort
	}
	return 0
}

func refTypeAlign(c RefCode) uint32 {
	if IsMultiByteCode(c) {
		return 4
	}
	return 1
}

// EncodeRefType writes r in its fixed storage layout:
//
//	short form  [code]
//	ht          [code, nullable, 0, 0, heap int32 LE]
//	rtt n $t    [code, 0, 0, 0, depth u32 LE, index u32 LE]
//	rtt $t      [code, 0, 0, 0, index u32 LE]
//
// The heap operand is the negative abstract code or the concrete index.
func EncodeRefType(r *RefType) ([]byte, error) {
	code := r.Code()
	if code == 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("cannot encode %v", r))
	}
	buf := make([]byte, RefTypeSize(code))
	buf[0] = byte(code)
	switch h := r.Heap.(type) {
	case RTTNHeap:
		binary.LittleEndian.PutUint32(buf[4:], h.Depth)
		binary.LittleEndian.PutUint32(buf[8:], h.Type.Index)
	case RTTHeap:
		binary.LittleEndian.PutUint32(buf[4:], h.Type.Index)
	case AbstractHeap:
		if IsMultiByteCode(code) {
			if r.Nullable {
				buf[1] = 1
			}
			binary.LittleEndian.PutUint32(buf[4:], uint32(int32(h)))
		}
	case ConcreteHeap:
		if h.Index > 1<<31-1 {
			return nil, errors.OutOfBounds(errors.PhaseEncode, []string{"heap"}, int(h.Index), 1<<31)
		}
		if r.Nullable {
			buf[1] = 1
		}
		binary.LittleEndian.PutUint32(buf[4:], h.Index)
	}
	return buf, nil
}

// DecodeRefType reads a reference type in the layout of EncodeRefType.
// Concrete and runtime-type heap types are bound to tbl.
func DecodeRefType(b []byte, tbl *Table) (*RefType, error) {
	if len(b) == 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "empty reference type")
	}
	code := RefCode(b[0])
	size := RefTypeSize(code)
	if size == 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("invalid reference code 0x%02x", b[0]))
	}
	if uint32(len(b)) < size {
		return nil, errors.InvalidData(errors.PhaseDecode, nil,
			fmt.Sprintf("reference type 0x%02x needs %d bytes, have %d", b[0], size, len(b)))
	}
	switch code {
	case RefCodeFuncRef:
		return RefNull(HeapFunc), nil
	case RefCodeExternRef:
		return RefNull(HeapExtern), nil
	case RefCodeAnyRef:
		return RefNull(HeapAny), nil
	case RefCodeEqRef:
		return RefNull(HeapEq), nil
	case RefCodeI31Ref:
		return RefNonNull(HeapI31), nil
	case RefCodeDataRef:
		return RefNonNull(HeapData), nil
	case RefCodeRTTN:
		return &RefType{Heap: RTTNHeap{
			Depth: binary.LittleEndian.Uint32(b[4:]),
			Type:  ConcreteHeap{Table: tbl, Index: binary.LittleEndian.Uint32(b[8:])},
		}}, nil
	case RefCodeRTT:
		return &RefType{Heap: RTTHeap{
			Type: ConcreteHeap{Table: tbl, Index: binary.LittleEndian.Uint32(b[4:])},
		}}, nil
	}

	heap := int32(binary.LittleEndian.Uint32(b[4:]))
	r := &RefType{Nullable: code == RefCodeHTNullable}
	if heap < 0 {
		a := AbstractHeap(heap)
		if !a.Valid() {
			return nil, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("invalid heap type %d", heap))
		}
		r.Heap = a
	} else {
		r.Heap = ConcreteHeap{Table: tbl, Index: uint32(heap)}
	}
	return r, nil
}
