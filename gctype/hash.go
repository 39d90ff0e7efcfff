package gctype

import (
	"encoding/binary"

	"github.com/fxamacker/circlehash"
)

const (
	shapeSeed uint64 = 0x9e3779b97f4a7c15
	refSeed   uint64 = 0xc2b2ae3d27d4eb4f
)

// Heap tags in hashed encodings.
const (
	tagAbstract byte = iota + 1
	tagConcrete
	tagRTTN
	tagRTT
)

// shapeOf fingerprints one level of c: kind, arity, mutability and the tag of
// every value type. Concrete references contribute their tag only, so equal
// types always share a shape no matter how they recurse.
func shapeOf(c CompositeType) uint64 {
	buf := make([]byte, 0, 32)
	buf = append(buf, byte(c.Kind()))
	switch c := c.(type) {
	case *FuncType:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Params)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Results)))
		for _, p := range c.Params {
			buf = appendValueShape(buf, p)
		}
		for _, r := range c.Results {
			buf = appendValueShape(buf, r)
		}
	case *StructType:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Fields)))
		for _, f := range c.Fields {
			buf = appendFieldShape(buf, f)
		}
	case *ArrayType:
		buf = appendFieldShape(buf, c.Elem)
	}
	return circlehash.Hash64(buf, shapeSeed)
}

func appendFieldShape(buf []byte, f FieldType) []byte {
	if f.Mutable {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return appendValueShape(buf, f.Type)
}

func appendValueShape(buf []byte, v ValueType) []byte {
	switch v := v.(type) {
	case NumType:
		return append(buf, byte(v))
	case *RefType:
		buf = append(buf, 0x40)
		if v.Nullable {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		switch h := v.Heap.(type) {
		case AbstractHeap:
			buf = append(buf, tagAbstract)
			return binary.LittleEndian.AppendUint32(buf, uint32(int32(h)))
		case ConcreteHeap:
			return append(buf, tagConcrete)
		case RTTNHeap:
			buf = append(buf, tagRTTN)
			return binary.LittleEndian.AppendUint32(buf, h.Depth)
		case RTTHeap:
			return append(buf, tagRTT)
		}
	}
	return append(buf, 0)
}

// HashRefType returns a structural hash of r. Equal reference types hash
// equally: the hash covers nullability, the heap variant, abstract codes,
// RTT depths and the shape of the referenced type, never a type index or a
// table identity.
func HashRefType(r *RefType) uint64 {
	if r == nil {
		return 0
	}
	var buf [16]byte
	b := buf[:0]
	if r.Nullable {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	switch h := r.Heap.(type) {
	case AbstractHeap:
		b = append(b, tagAbstract)
		b = binary.LittleEndian.AppendUint32(b, uint32(int32(h)))
	case ConcreteHeap:
		b = append(b, tagConcrete)
		b = binary.LittleEndian.AppendUint64(b, h.Table.shapeOf(h.Index))
	case RTTNHeap:
		b = append(b, tagRTTN)
		b = binary.LittleEndian.AppendUint32(b, h.Depth)
		b = binary.LittleEndian.AppendUint64(b, h.Type.Table.shapeOf(h.Type.Index))
	case RTTHeap:
		b = append(b, tagRTT)
		b = binary.LittleEndian.AppendUint64(b, h.Type.Table.shapeOf(h.Type.Index))
	}
	return circlehash.Hash64(b, refSeed)
}
