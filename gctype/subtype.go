package gctype

// IsSubtype reports whether type i of ta is a subtype of type j of tb.
func IsSubtype(ta *Table, i uint32, tb *Table, j uint32) bool {
	return (&relation{}).typesSub(ta, i, tb, j)
}

// CompositeTypeIsSubtype reports whether a is a subtype of b.
func CompositeTypeIsSubtype(a, b CompositeType) bool {
	return (&relation{}).compositeSub(a, b)
}

// FuncTypeIsSubtype reports whether a is a subtype of b. Function types are
// invariant: this holds only when they are equal.
func FuncTypeIsSubtype(a, b *FuncType) bool {
	return (&relation{}).funcEqual(a, b)
}

// StructTypeIsSubtype reports whether a is a subtype of b. a may carry extra
// trailing fields; mutable fields are invariant, immutable fields covariant.
func StructTypeIsSubtype(a, b *StructType) bool {
	return (&relation{}).structSub(a, b)
}

// ArrayTypeIsSubtype reports whether a is a subtype of b.
func ArrayTypeIsSubtype(a, b *ArrayType) bool {
	return (&relation{}).fieldSub(a.Elem, b.Elem)
}

// ValueTypeIsSubtype reports whether a is a subtype of b.
func ValueTypeIsSubtype(a, b ValueType) bool {
	return (&relation{}).valueSub(a, b)
}

// RefTypeIsSubtype reports whether a is a subtype of b. A nullable reference
// is never a subtype of a non-nullable one.
func RefTypeIsSubtype(a, b *RefType) bool {
	return (&relation{}).refSub(a, b)
}

// HeapTypeIsSubtype reports whether a is a heap subtype of b.
func HeapTypeIsSubtype(a, b HeapType) bool {
	return (&relation{}).heapSub(a, b)
}

// abstractParent is the immediate supertype in the abstract order:
// i31 <: eq, data <: eq, eq <: any, func <: any, extern <: any.
// func is not under eq; see abstractOf.
func abstractParent(h AbstractHeap) (AbstractHeap, bool) {
	switch h {
	case HeapI31, HeapData:
		return HeapEq, true
	case HeapEq, HeapFunc, HeapExtern:
		return HeapAny, true
	}
	return 0, false
}

func abstractSub(a, b AbstractHeap) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	for {
		if a == b {
			return true
		}
		p, ok := abstractParent(a)
		if !ok {
			return false
		}
		a = p
	}
}

// abstractOf returns the abstract heap type a concrete type of kind k sits
// directly under. Concrete func types go under func only, never eq: function
// references have no identity comparison in the GC proposal, so (ref $f) is
// not an eqref even though eq is sometimes listed above all concrete kinds.
func abstractOf(k CompKind) AbstractHeap {
	if k == CompFunc {
		return HeapFunc
	}
	return HeapData
}

func (r *relation) typesSub(ta *Table, i uint32, tb *Table, j uint32) bool {
	if ta == tb && i == j {
		return ta != nil && int(i) < ta.Len()
	}
	if ta == nil || tb == nil || int(i) >= ta.Len() || int(j) >= tb.Len() {
		return false
	}
	if r.declaredSub(ta, i, tb, j) {
		return true
	}
	if ta.types[i].Composite.Kind() != tb.types[j].Composite.Kind() {
		return false
	}
	k := pairKey{a: ta, i: i, b: tb, j: j}
	if has(r.subFailed, k) {
		return false
	}
	if has(r.subPending, k) {
		return true
	}
	mark(&r.subPending, k)
	ok := r.compositeSub(ta.types[i].Composite, tb.types[j].Composite)
	delete(r.subPending, k)
	if !ok {
		mark(&r.subFailed, k)
	}
	return ok
}

// declaredSub walks the declared supertype chain of (ta, i), self included,
// looking for j. Across tables an ancestor must be equal to j.
func (r *relation) declaredSub(ta *Table, i uint32, tb *Table, j uint32) bool {
	cur := i
	for {
		if ta == tb {
			if cur == j {
				return true
			}
		} else if r.typesEqual(ta, cur, tb, j) {
			return true
		}
		p, ok := ta.types[cur].Super()
		if !ok {
			return false
		}
		cur = p
	}
}

func (r *relation) compositeSub(a, b CompositeType) bool {
	switch a := a.(type) {
	case *FuncType:
		b, ok := b.(*FuncType)
		return ok && r.funcEqual(a, b)
	case *StructType:
		b, ok := b.(*StructType)
		return ok && r.structSub(a, b)
	case *ArrayType:
		b, ok := b.(*ArrayType)
		return ok && r.fieldSub(a.Elem, b.Elem)
	}
	return false
}

func (r *relation) structSub(a, b *StructType) bool {
	if a == b {
		return true
	}
	if len(a.Fields) < len(b.Fields) {
		return false
	}
	for k := range b.Fields {
		if !r.fieldSub(a.Fields[k], b.Fields[k]) {
			return false
		}
	}
	return true
}

func (r *relation) fieldSub(a, b FieldType) bool {
	if a.Mutable != b.Mutable {
		return false
	}
	if b.Mutable {
		return r.valueEqual(a.Type, b.Type)
	}
	return r.valueSub(a.Type, b.Type)
}

func (r *relation) valueSub(a, b ValueType) bool {
	switch a := a.(type) {
	case NumType:
		b, ok := b.(NumType)
		return ok && a == b
	case *RefType:
		b, ok := b.(*RefType)
		return ok && r.refSub(a, b)
	}
	return false
}

func (r *relation) refSub(a, b *RefType) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Nullable && !b.Nullable {
		return false
	}
	return r.heapSub(a.Heap, b.Heap)
}

func (r *relation) heapSub(a, b HeapType) bool {
	switch a := a.(type) {
	case AbstractHeap:
		b, ok := b.(AbstractHeap)
		return ok && abstractSub(a, b)
	case ConcreteHeap:
		switch b := b.(type) {
		case AbstractHeap:
			k, ok := a.Table.kindOf(a.Index)
			return ok && abstractSub(abstractOf(k), b)
		case ConcreteHeap:
			if a.Table == nil || b.Table == nil {
				return a.Table == b.Table && a.Index == b.Index
			}
			return r.typesSub(a.Table, a.Index, b.Table, b.Index)
		}
		return false
	case RTTNHeap:
		b, ok := b.(RTTNHeap)
		return ok && a.Depth <= b.Depth && r.rttTypeSub(a.Type, b.Type)
	case RTTHeap:
		b, ok := b.(RTTHeap)
		return ok && r.rttTypeSub(a.Type, b.Type)
	}
	return false
}

// rttTypeSub relates the types under two runtime-type tokens: b's declared
// chain must be a suffix of a's, compared with rttTypeEqual. This makes a the
// same type as b or a declared subtype of it, and keeps the relation
// transitive and closed under equality.
func (r *relation) rttTypeSub(a, b ConcreteHeap) bool {
	if a.Table == nil || b.Table == nil {
		return a.Table == b.Table && a.Index == b.Index
	}
	if int(a.Index) >= a.Table.Len() || int(b.Index) >= b.Table.Len() {
		return false
	}
	da, db := a.Table.Depth(a.Index), b.Table.Depth(b.Index)
	if da < db {
		return false
	}
	for ; da > db; da-- {
		a.Index, _ = a.Table.types[a.Index].Super()
	}
	return r.rttTypeEqual(a, b)
}
