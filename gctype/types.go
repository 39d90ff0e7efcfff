package gctype

import (
	"strconv"
	"strings"
)

// ValueType is a numeric or vector primitive (NumType) or a reference (*RefType).
type ValueType interface {
	isValueType()
	String() string
}

// NumType is a fixed-width primitive, compared by tag only.
// I8 and I16 are packed storage types valid in struct fields and array elements.
type NumType byte

const (
	I32  NumType = 0x7F
	I64  NumType = 0x7E
	F32  NumType = 0x7D
	F64  NumType = 0x7C
	V128 NumType = 0x7B
	I8   NumType = 0x7A
	I16  NumType = 0x79
)

func (NumType) isValueType() {}

func (t NumType) String() string {
	switch t {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case V128:
		return "v128"
	case I8:
		return "i8"
	case I16:
		return "i16"
	default:
		return "unknown"
	}
}

// IsPacked reports whether t is a packed storage type.
func (t NumType) IsPacked() bool {
	return t == I8 || t == I16
}

// Valid reports whether t is a known primitive.
func (t NumType) Valid() bool {
	return t >= I16 && t <= I32
}

// RefType is a reference to a heap type, nullable or not.
type RefType struct {
	Heap     HeapType
	Nullable bool
}

func (*RefType) isValueType() {}

func (r *RefType) String() string {
	if r == nil || r.Heap == nil {
		return "(ref ?)"
	}
	switch h := r.Heap.(type) {
	case RTTNHeap:
		return "(rtt " + strconv.FormatUint(uint64(h.Depth), 10) + " " + h.Type.String() + ")"
	case RTTHeap:
		return "(rtt " + h.Type.String() + ")"
	}
	switch r.Code() {
	case RefCodeFuncRef:
		return "funcref"
	case RefCodeExternRef:
		return "externref"
	case RefCodeAnyRef:
		return "anyref"
	case RefCodeEqRef:
		return "eqref"
	case RefCodeI31Ref:
		return "i31ref"
	case RefCodeDataRef:
		return "dataref"
	}
	if r.Nullable {
		return "(ref null " + r.Heap.String() + ")"
	}
	return "(ref " + r.Heap.String() + ")"
}

// RefNull returns a new nullable reference to h.
func RefNull(h HeapType) *RefType {
	return &RefType{Heap: h, Nullable: true}
}

// RefNonNull returns a new non-nullable reference to h.
func RefNonNull(h HeapType) *RefType {
	return &RefType{Heap: h}
}

// TypeRef returns a reference to the type at idx of the table being built.
func TypeRef(idx uint32, nullable bool) *RefType {
	return &RefType{Heap: ConcreteHeap{Index: idx}, Nullable: nullable}
}

// HeapType is the referent of a reference: AbstractHeap, ConcreteHeap,
// RTTNHeap or RTTHeap.
type HeapType interface {
	isHeapType()
	String() string
}

// AbstractHeap is a built-in heap type, encoded as its negative s33 code.
type AbstractHeap int32

const (
	HeapFunc   AbstractHeap = -0x10
	HeapExtern AbstractHeap = -0x11
	HeapAny    AbstractHeap = -0x12
	HeapEq     AbstractHeap = -0x13
	HeapI31    AbstractHeap = -0x16
	HeapData   AbstractHeap = -0x19
)

// Heap type codes that mark runtime-type tokens in the fixed storage layout.
const (
	heapCodeRTTN int32 = -0x17
	heapCodeRTT  int32 = -0x18
)

func (AbstractHeap) isHeapType() {}

func (h AbstractHeap) String() string {
	switch h {
	case HeapFunc:
		return "func"
	case HeapExtern:
		return "extern"
	case HeapAny:
		return "any"
	case HeapEq:
		return "eq"
	case HeapI31:
		return "i31"
	case HeapData:
		return "data"
	default:
		return "unknown"
	}
}

// Valid reports whether h is one of the built-in heap types.
func (h AbstractHeap) Valid() bool {
	switch h {
	case HeapFunc, HeapExtern, HeapAny, HeapEq, HeapI31, HeapData:
		return true
	}
	return false
}

// ConcreteHeap references a composite type by index in Table.
// A nil Table means "the table under construction"; NewTable binds it.
type ConcreteHeap struct {
	Table *Table
	Index uint32
}

func (ConcreteHeap) isHeapType() {}

func (h ConcreteHeap) String() string {
	return strconv.FormatUint(uint64(h.Index), 10)
}

// RTTNHeap is a runtime-type token for Type at exactly Depth in its
// supertype chain.
type RTTNHeap struct {
	Type  ConcreteHeap
	Depth uint32
}

func (RTTNHeap) isHeapType() {}

func (h RTTNHeap) String() string {
	return "rtt " + strconv.FormatUint(uint64(h.Depth), 10) + " " + h.Type.String()
}

// RTTHeap is a runtime-type token for Type at any depth.
type RTTHeap struct {
	Type ConcreteHeap
}

func (RTTHeap) isHeapType() {}

func (h RTTHeap) String() string {
	return "rtt " + h.Type.String()
}

// Concrete returns a concrete heap type for idx of the table being built.
func Concrete(idx uint32) ConcreteHeap {
	return ConcreteHeap{Index: idx}
}

// RTTN returns a depth-bounded runtime-type token heap type.
func RTTN(depth, idx uint32) RTTNHeap {
	return RTTNHeap{Depth: depth, Type: ConcreteHeap{Index: idx}}
}

// RTT returns an unbounded runtime-type token heap type.
func RTT(idx uint32) RTTHeap {
	return RTTHeap{Type: ConcreteHeap{Index: idx}}
}

// CompKind identifies a composite type; values match the binary form bytes.
type CompKind byte

const (
	CompFunc   CompKind = 0x60
	CompStruct CompKind = 0x5F
	CompArray  CompKind = 0x5E
)

func (k CompKind) String() string {
	switch k {
	case CompFunc:
		return "func"
	case CompStruct:
		return "struct"
	case CompArray:
		return "array"
	default:
		return "unknown"
	}
}

// CompositeType is *FuncType, *StructType or *ArrayType.
type CompositeType interface {
	isCompositeType()
	Kind() CompKind
	String() string
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

func (*FuncType) isCompositeType() {}

// Kind returns CompFunc.
func (*FuncType) Kind() CompKind { return CompFunc }

func (f *FuncType) String() string {
	var b strings.Builder
	b.WriteString("(func")
	if len(f.Params) > 0 {
		b.WriteString(" (param")
		for _, p := range f.Params {
			b.WriteByte(' ')
			b.WriteString(p.String())
		}
		b.WriteByte(')')
	}
	if len(f.Results) > 0 {
		b.WriteString(" (result")
		for _, r := range f.Results {
			b.WriteByte(' ')
			b.WriteString(r.String())
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

// FieldType is a struct field or array element with its mutability.
type FieldType struct {
	Type    ValueType
	Mutable bool
}

func (f FieldType) String() string {
	if f.Mutable {
		return "(mut " + f.Type.String() + ")"
	}
	return f.Type.String()
}

// StructType is an ordered sequence of fields.
type StructType struct {
	Fields []FieldType
}

func (*StructType) isCompositeType() {}

// Kind returns CompStruct.
func (*StructType) Kind() CompKind { return CompStruct }

func (s *StructType) String() string {
	var b strings.Builder
	b.WriteString("(struct")
	for _, f := range s.Fields {
		b.WriteString(" (field ")
		b.WriteString(f.String())
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

// ArrayType has a single element field type.
type ArrayType struct {
	Elem FieldType
}

func (*ArrayType) isCompositeType() {}

// Kind returns CompArray.
func (*ArrayType) Kind() CompKind { return CompArray }

func (a *ArrayType) String() string {
	return "(array " + a.Elem.String() + ")"
}

// SubType wraps a composite type with its declared supertype and finality.
// Both are hints: the relation engine never needs them for soundness.
type SubType struct {
	Composite CompositeType
	Parents   []uint32
	Final     bool
}

// Super returns the declared supertype index, if any.
func (s *SubType) Super() (uint32, bool) {
	if len(s.Parents) == 0 {
		return 0, false
	}
	return s.Parents[0], true
}

func (s *SubType) String() string {
	if s.Composite == nil {
		return "(type ?)"
	}
	if len(s.Parents) == 0 && !s.Final {
		return s.Composite.String()
	}
	var b strings.Builder
	b.WriteString("(sub ")
	if s.Final {
		b.WriteString("final ")
	}
	for _, p := range s.Parents {
		b.WriteString(strconv.FormatUint(uint64(p), 10))
		b.WriteByte(' ')
	}
	b.WriteString(s.Composite.String())
	b.WriteByte(')')
	return b.String()
}
