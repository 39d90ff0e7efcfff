package gctype

// Heap-type classification. All predicates are total: a nil or unknown heap
// type answers false.

// IsAbstract reports whether h is a built-in heap type.
func IsAbstract(h HeapType) bool {
	a, ok := h.(AbstractHeap)
	return ok && a.Valid()
}

// IsFunc reports whether h is the abstract func heap type.
func IsFunc(h HeapType) bool { return isAbstract(h, HeapFunc) }

// IsExtern reports whether h is the abstract extern heap type.
func IsExtern(h HeapType) bool { return isAbstract(h, HeapExtern) }

// IsAny reports whether h is the abstract any heap type.
func IsAny(h HeapType) bool { return isAbstract(h, HeapAny) }

// IsEq reports whether h is the abstract eq heap type.
func IsEq(h HeapType) bool { return isAbstract(h, HeapEq) }

// IsI31 reports whether h is the abstract i31 heap type.
func IsI31(h HeapType) bool { return isAbstract(h, HeapI31) }

// IsData reports whether h is the abstract data heap type.
func IsData(h HeapType) bool { return isAbstract(h, HeapData) }

func isAbstract(h HeapType, want AbstractHeap) bool {
	a, ok := h.(AbstractHeap)
	return ok && a == want
}

// IsConcrete reports whether h references a type table entry.
func IsConcrete(h HeapType) bool {
	_, ok := h.(ConcreteHeap)
	return ok
}

// IsRTTN reports whether h is a depth-bounded runtime-type token.
func IsRTTN(h HeapType) bool {
	_, ok := h.(RTTNHeap)
	return ok
}

// IsRTT reports whether h is an unbounded runtime-type token.
func IsRTT(h HeapType) bool {
	_, ok := h.(RTTHeap)
	return ok
}

// IsRTTToken reports whether h is a runtime-type token of either form.
func IsRTTToken(h HeapType) bool {
	return IsRTTN(h) || IsRTT(h)
}

// TypeIndex returns the type index carried by a concrete heap type or a
// runtime-type token.
func TypeIndex(h HeapType) (uint32, bool) {
	switch h := h.(type) {
	case ConcreteHeap:
		return h.Index, true
	case RTTNHeap:
		return h.Type.Index, true
	case RTTHeap:
		return h.Type.Index, true
	}
	return 0, false
}

// concreteOf returns the concrete type a heap type resolves through.
func concreteOf(h HeapType) (ConcreteHeap, bool) {
	switch h := h.(type) {
	case ConcreteHeap:
		return h, true
	case RTTNHeap:
		return h.Type, true
	case RTTHeap:
		return h.Type, true
	}
	return ConcreteHeap{}, false
}

// IsFuncType reports whether c is a function type.
func IsFuncType(c CompositeType) bool {
	_, ok := c.(*FuncType)
	return ok
}

// IsStructType reports whether c is a struct type.
func IsStructType(c CompositeType) bool {
	_, ok := c.(*StructType)
	return ok
}

// IsArrayType reports whether c is an array type.
func IsArrayType(c CompositeType) bool {
	_, ok := c.(*ArrayType)
	return ok
}

// Reference-type predicates keyed on the binary form of r.

// IsFuncRef reports whether r is funcref, i.e. (ref null func).
func IsFuncRef(r *RefType) bool { return r.Code() == RefCodeFuncRef }

// IsExternRef reports whether r is externref.
func IsExternRef(r *RefType) bool { return r.Code() == RefCodeExternRef }

// IsAnyRef reports whether r is anyref.
func IsAnyRef(r *RefType) bool { return r.Code() == RefCodeAnyRef }

// IsEqRef reports whether r is eqref.
func IsEqRef(r *RefType) bool { return r.Code() == RefCodeEqRef }

// IsI31Ref reports whether r is i31ref, i.e. (ref i31).
func IsI31Ref(r *RefType) bool { return r.Code() == RefCodeI31Ref }

// IsDataRef reports whether r is dataref, i.e. (ref data).
func IsDataRef(r *RefType) bool { return r.Code() == RefCodeDataRef }

// IsHTRefNullable reports whether r needs the (ref null ht) form.
func IsHTRefNullable(r *RefType) bool { return r.Code() == RefCodeHTNullable }

// IsHTRefNonNullable reports whether r needs the (ref ht) form.
func IsHTRefNonNullable(r *RefType) bool { return r.Code() == RefCodeHTNonNullable }

// IsRTTNRef reports whether r is (rtt n $t).
func IsRTTNRef(r *RefType) bool { return r.Code() == RefCodeRTTN }

// IsRTTRef reports whether r is (rtt $t).
func IsRTTRef(r *RefType) bool { return r.Code() == RefCodeRTT }
