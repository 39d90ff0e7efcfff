package gctype

// pairKey identifies a pair of types being related, each resolved in its own
// table.
type pairKey struct {
	a, b *Table
	i, j uint32
}

// relation carries the state of one top-level query. Pairs in progress are
// assumed to hold; failures are final and cached. Maps are created lazily
// since most queries never reach a concrete type.
type relation struct {
	eqPending  map[pairKey]struct{}
	subPending map[pairKey]struct{}
	eqFailed   map[pairKey]struct{}
	subFailed  map[pairKey]struct{}
}

func mark(m *map[pairKey]struct{}, k pairKey) {
	if *m == nil {
		*m = make(map[pairKey]struct{})
	}
	(*m)[k] = struct{}{}
}

func has(m map[pairKey]struct{}, k pairKey) bool {
	_, ok := m[k]
	return ok
}

// TypesEqual reports whether type i of ta and type j of tb are structurally
// equal. Declared supertypes and finality do not take part.
func TypesEqual(ta *Table, i uint32, tb *Table, j uint32) bool {
	return (&relation{}).typesEqual(ta, i, tb, j)
}

// CompositeTypesEqual reports whether a and b are structurally equal.
func CompositeTypesEqual(a, b CompositeType) bool {
	return (&relation{}).compositeEqual(a, b)
}

// FuncTypesEqual reports whether a and b have pairwise equal parameters and
// results.
func FuncTypesEqual(a, b *FuncType) bool {
	return (&relation{}).funcEqual(a, b)
}

// StructTypesEqual reports whether a and b have the same fields in order.
func StructTypesEqual(a, b *StructType) bool {
	return (&relation{}).structEqual(a, b)
}

// ArrayTypesEqual reports whether a and b have the same element field.
func ArrayTypesEqual(a, b *ArrayType) bool {
	return (&relation{}).fieldEqual(a.Elem, b.Elem)
}

// ValueTypesEqual reports whether a and b are equal value types.
func ValueTypesEqual(a, b ValueType) bool {
	return (&relation{}).valueEqual(a, b)
}

// RefTypesEqual reports whether a and b are equal reference types. This is the
// equality the canonical set dedups by.
func RefTypesEqual(a, b *RefType) bool {
	return (&relation{}).refEqual(a, b)
}

// HeapTypesEqual reports whether a and b are equal heap types.
func HeapTypesEqual(a, b HeapType) bool {
	return (&relation{}).heapEqual(a, b)
}

// RTTNTypesEqual reports whether two depth-bounded runtime-type tokens have
// the same depth and equal declared supertype chains.
func RTTNTypesEqual(a, b RTTNHeap) bool {
	return a.Depth == b.Depth && (&relation{}).rttTypeEqual(a.Type, b.Type)
}

// RTTTypesEqual reports whether two unbounded runtime-type tokens have equal
// declared supertype chains.
func RTTTypesEqual(a, b RTTHeap) bool {
	return (&relation{}).rttTypeEqual(a.Type, b.Type)
}

func (r *relation) typesEqual(ta *Table, i uint32, tb *Table, j uint32) bool {
	if ta == tb && i == j {
		return ta != nil && int(i) < ta.Len()
	}
	if ta == nil || tb == nil || int(i) >= ta.Len() || int(j) >= tb.Len() {
		return false
	}
	if ta.shape[i] != tb.shape[j] {
		return false
	}
	k := pairKey{a: ta, i: i, b: tb, j: j}
	if has(r.eqFailed, k) {
		return false
	}
	if has(r.eqPending, k) {
		return true
	}
	mark(&r.eqPending, k)
	ok := r.compositeEqual(ta.types[i].Composite, tb.types[j].Composite)
	delete(r.eqPending, k)
	if !ok {
		mark(&r.eqFailed, k)
	}
	return ok
}

func (r *relation) compositeEqual(a, b CompositeType) bool {
	switch a := a.(type) {
	case *FuncType:
		b, ok := b.(*FuncType)
		return ok && r.funcEqual(a, b)
	case *StructType:
		b, ok := b.(*StructType)
		return ok && r.structEqual(a, b)
	case *ArrayType:
		b, ok := b.(*ArrayType)
		return ok && r.fieldEqual(a.Elem, b.Elem)
	}
	return false
}

func (r *relation) funcEqual(a, b *FuncType) bool {
	if a == b {
		return true
	}
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	return r.valuesEqual(a.Params, b.Params) && r.valuesEqual(a.Results, b.Results)
}

func (r *relation) valuesEqual(a, b []ValueType) bool {
	for k := range a {
		if !r.valueEqual(a[k], b[k]) {
			return false
		}
	}
	return true
}

func (r *relation) structEqual(a, b *StructType) bool {
	if a == b {
		return true
	}
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for k := range a.Fields {
		if !r.fieldEqual(a.Fields[k], b.Fields[k]) {
			return false
		}
	}
	return true
}

func (r *relation) fieldEqual(a, b FieldType) bool {
	return a.Mutable == b.Mutable && r.valueEqual(a.Type, b.Type)
}

func (r *relation) valueEqual(a, b ValueType) bool {
	switch a := a.(type) {
	case NumType:
		b, ok := b.(NumType)
		return ok && a == b
	case *RefType:
		b, ok := b.(*RefType)
		return ok && r.refEqual(a, b)
	}
	return false
}

func (r *relation) refEqual(a, b *RefType) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Nullable != b.Nullable {
		return false
	}
	return r.heapEqual(a.Heap, b.Heap)
}

func (r *relation) heapEqual(a, b HeapType) bool {
	switch a := a.(type) {
	case AbstractHeap:
		b, ok := b.(AbstractHeap)
		return ok && a == b
	case ConcreteHeap:
		b, ok := b.(ConcreteHeap)
		return ok && r.concreteEqual(a, b)
	case RTTNHeap:
		b, ok := b.(RTTNHeap)
		return ok && a.Depth == b.Depth && r.rttTypeEqual(a.Type, b.Type)
	case RTTHeap:
		b, ok := b.(RTTHeap)
		return ok && r.rttTypeEqual(a.Type, b.Type)
	}
	return false
}

// concreteEqual compares two concrete heap types. Unbound heap types only
// equal an unbound heap type with the same index.
func (r *relation) concreteEqual(a, b ConcreteHeap) bool {
	if a.Table == nil || b.Table == nil {
		return a.Table == b.Table && a.Index == b.Index
	}
	return r.typesEqual(a.Table, a.Index, b.Table, b.Index)
}

// rttTypeEqual compares the types under two runtime-type tokens. A token
// stands for its type's whole declared supertype chain, so both chains must
// have the same length and be equal level by level.
func (r *relation) rttTypeEqual(a, b ConcreteHeap) bool {
	if a.Table == nil || b.Table == nil {
		return a.Table == b.Table && a.Index == b.Index
	}
	ta, tb := a.Table, b.Table
	i, j := a.Index, b.Index
	if int(i) >= ta.Len() || int(j) >= tb.Len() || ta.Depth(i) != tb.Depth(j) {
		return false
	}
	for {
		if !r.typesEqual(ta, i, tb, j) {
			return false
		}
		pi, ok := ta.types[i].Super()
		if !ok {
			return true
		}
		j, _ = tb.types[j].Super()
		i = pi
	}
}
