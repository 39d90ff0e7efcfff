package gctype

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-gc/errors"
)

var tableIDs atomic.Uint64

// Group is a recursive type group: types [Start, Start+Len) of a table.
type Group struct {
	Start uint32
	Len   uint32
}

// End returns one past the last index of the group.
func (g Group) End() uint32 { return g.Start + g.Len }

// Table is an immutable indexed collection of sub types. Every concrete heap
// type reachable from its entries carries the table it resolves against.
// A Table is safe for concurrent use once NewTable returns.
type Table struct {
	types   []SubType
	groups  []Group
	groupOf []uint32
	depth   []uint32
	shape   []uint64
	id      uint64
}

// TableOption configures table construction.
type TableOption func(*tableConfig)

type tableConfig struct {
	set *Set
}

// WithCanonicalSet folds every reference type of the new table into s, so
// equal reference types share one descriptor.
func WithCanonicalSet(s *Set) TableOption {
	return func(c *tableConfig) {
		c.set = s
	}
}

// NewTable builds a table whose types form a single recursive group.
func NewTable(types []SubType, opts ...TableOption) (*Table, error) {
	return NewTableGroups([][]SubType{types}, opts...)
}

// NewTableGroups builds a table from consecutive recursive groups. A type may
// reference any type of its own group or of an earlier one. The descriptors
// are deep copied; the caller keeps ownership of its inputs.
func NewTableGroups(groups [][]SubType, opts ...TableOption) (*Table, error) {
	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	n := 0
	for _, g := range groups {
		n += len(g)
	}

	t := &Table{
		id:      tableIDs.Add(1),
		types:   make([]SubType, 0, n),
		groups:  make([]Group, 0, len(groups)),
		groupOf: make([]uint32, 0, n),
		depth:   make([]uint32, n),
		shape:   make([]uint64, n),
	}

	for gi, g := range groups {
		start := uint32(len(t.types))
		t.groups = append(t.groups, Group{Start: start, Len: uint32(len(g))})
		for i := range g {
			st, err := t.bind(&g[i], start+uint32(i))
			if err != nil {
				return nil, err
			}
			t.types = append(t.types, st)
			t.groupOf = append(t.groupOf, uint32(gi))
		}
	}

	if err := t.checkIndices(); err != nil {
		return nil, err
	}
	if err := t.checkSupertypes(); err != nil {
		return nil, err
	}
	if err := t.computeDepths(); err != nil {
		return nil, err
	}
	for i := range t.types {
		t.shape[i] = shapeOf(t.types[i].Composite)
	}
	if err := t.checkDeclaredSubtyping(); err != nil {
		return nil, err
	}
	if cfg.set != nil {
		if err := t.canonicalize(cfg.set); err != nil {
			return nil, err
		}
	}

	Logger().Debug("type table built",
		zap.Uint64("id", t.id),
		zap.Int("types", len(t.types)),
		zap.Int("groups", len(t.groups)))
	return t, nil
}

// ID returns the table's process-unique identity.
func (t *Table) ID() uint64 { return t.id }

// Len returns the number of types.
func (t *Table) Len() int { return len(t.types) }

// Type returns the sub type at index i.
// The returned descriptor is shared and must not be modified.
func (t *Table) Type(i uint32) (*SubType, bool) {
	if int(i) >= len(t.types) {
		return nil, false
	}
	return &t.types[i], true
}

// Groups returns the recursive groups in declaration order.
func (t *Table) Groups() []Group {
	out := make([]Group, len(t.groups))
	copy(out, t.groups)
	return out
}

// GroupOf returns the recursive group containing type i.
func (t *Table) GroupOf(i uint32) (Group, bool) {
	if int(i) >= len(t.types) {
		return Group{}, false
	}
	return t.groups[t.groupOf[i]], true
}

// Depth returns the length of type i's declared supertype chain. An RTT for
// type i proves exactly this depth.
func (t *Table) Depth(i uint32) uint32 {
	if int(i) >= len(t.depth) {
		return 0
	}
	return t.depth[i]
}

// Supertypes returns the declared supertype chain of type i, nearest first.
func (t *Table) Supertypes(i uint32) []uint32 {
	if int(i) >= len(t.types) {
		return nil
	}
	out := make([]uint32, 0, t.depth[i])
	for {
		p, ok := t.types[i].Super()
		if !ok {
			return out
		}
		out = append(out, p)
		i = p
	}
}

// Ref returns a new reference to type i bound to t.
func (t *Table) Ref(i uint32, nullable bool) *RefType {
	return &RefType{Heap: ConcreteHeap{Table: t, Index: i}, Nullable: nullable}
}

func (t *Table) String() string {
	return "table#" + strconv.FormatUint(t.id, 10)
}

func typePath(i uint32, rest ...string) []string {
	return append([]string{"type", strconv.FormatUint(uint64(i), 10)}, rest...)
}

// bind deep copies st and binds table-less concrete heap types to t.
func (t *Table) bind(st *SubType, idx uint32) (SubType, error) {
	out := SubType{Final: st.Final}
	if len(st.Parents) > 0 {
		out.Parents = append([]uint32(nil), st.Parents...)
	}
	switch c := st.Composite.(type) {
	case *FuncType:
		ft := &FuncType{
			Params:  make([]ValueType, len(c.Params)),
			Results: make([]ValueType, len(c.Results)),
		}
		for k, p := range c.Params {
			v, err := t.bindValue(p, typePath(idx, "param", strconv.Itoa(k)), false)
			if err != nil {
				return out, err
			}
			ft.Params[k] = v
		}
		for k, r := range c.Results {
			v, err := t.bindValue(r, typePath(idx, "result", strconv.Itoa(k)), false)
			if err != nil {
				return out, err
			}
			ft.Results[k] = v
		}
		out.Composite = ft
	case *StructType:
		s := &StructType{Fields: make([]FieldType, len(c.Fields))}
		for k, f := range c.Fields {
			v, err := t.bindValue(f.Type, typePath(idx, "field", strconv.Itoa(k)), true)
			if err != nil {
				return out, err
			}
			s.Fields[k] = FieldType{Type: v, Mutable: f.Mutable}
		}
		out.Composite = s
	case *ArrayType:
		v, err := t.bindValue(c.Elem.Type, typePath(idx, "elem"), true)
		if err != nil {
			return out, err
		}
		out.Composite = &ArrayType{Elem: FieldType{Type: v, Mutable: c.Elem.Mutable}}
	case nil:
		return out, errors.NilPointer(errors.PhaseValidate, typePath(idx), "composite")
	default:
		return out, errors.Unsupported(errors.PhaseValidate, fmt.Sprintf("composite type %T", c))
	}
	return out, nil
}

func (t *Table) bindValue(v ValueType, path []string, storage bool) (ValueType, error) {
	switch v := v.(type) {
	case NumType:
		if !v.Valid() {
			return nil, errors.InvalidData(errors.PhaseValidate, path, fmt.Sprintf("invalid value type 0x%02x", byte(v)))
		}
		if v.IsPacked() && !storage {
			return nil, errors.TypeMismatch(errors.PhaseValidate, path, v.String(), "packed type outside struct or array")
		}
		return v, nil
	case *RefType:
		if v == nil {
			return nil, errors.NilPointer(errors.PhaseValidate, path, "*gctype.RefType")
		}
		h, err := t.bindHeap(v.Heap, path)
		if err != nil {
			return nil, err
		}
		return &RefType{Heap: h, Nullable: v.Nullable}, nil
	case nil:
		return nil, errors.NilPointer(errors.PhaseValidate, path, "value type")
	}
	return nil, errors.Unsupported(errors.PhaseValidate, fmt.Sprintf("value type %T", v))
}

func (t *Table) bindHeap(h HeapType, path []string) (HeapType, error) {
	switch h := h.(type) {
	case AbstractHeap:
		if !h.Valid() {
			return nil, errors.InvalidData(errors.PhaseValidate, path, fmt.Sprintf("invalid heap type %d", int32(h)))
		}
		return h, nil
	case ConcreteHeap:
		if h.Table == nil {
			h.Table = t
		}
		return h, nil
	case RTTNHeap:
		if h.Type.Table == nil {
			h.Type.Table = t
		}
		return h, nil
	case RTTHeap:
		if h.Type.Table == nil {
			h.Type.Table = t
		}
		return h, nil
	case nil:
		return nil, errors.NilPointer(errors.PhaseValidate, path, "heap type")
	}
	return nil, errors.Unsupported(errors.PhaseValidate, fmt.Sprintf("heap type %T", h))
}

// checkIndices verifies that every concrete index resolves. Own indices must
// stay inside the owner's group or an earlier one.
func (t *Table) checkIndices() error {
	for i := range t.types {
		idx := uint32(i)
		limit := t.groups[t.groupOf[i]].End()
		err := t.forEachRef(idx, func(r *RefType, path []string) error {
			ch, ok := concreteOf(r.Heap)
			if !ok {
				return nil
			}
			bound := limit
			if ch.Table != t {
				bound = uint32(ch.Table.Len())
			}
			if ch.Index >= bound {
				return errors.New(errors.PhaseValidate, errors.KindOutOfBounds).
					Path(path...).
					Type(r.String()).
					Value(ch.Index).
					Detail("type index %d does not resolve (limit %d)", ch.Index, bound).
					Build()
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) checkSupertypes() error {
	for i := range t.types {
		st := &t.types[i]
		idx := uint32(i)
		if len(st.Parents) > 1 {
			return errors.New(errors.PhaseValidate, errors.KindUnsupported).
				Path(typePath(idx, "super")...).
				Detail("%d supertypes declared, at most one allowed", len(st.Parents)).
				Build()
		}
		p, ok := st.Super()
		if !ok {
			continue
		}
		limit := t.groups[t.groupOf[i]].End()
		if p >= limit {
			return errors.OutOfBounds(errors.PhaseValidate, typePath(idx, "super"), int(p), int(limit))
		}
		if p == idx {
			return errors.Cycle(errors.PhaseValidate, typePath(idx, "super"), idx)
		}
		parent := &t.types[p]
		if parent.Composite.Kind() != st.Composite.Kind() {
			return errors.TypeMismatch(errors.PhaseValidate, typePath(idx, "super"), st.Composite.Kind().String(),
				fmt.Sprintf("supertype %d is a %s type", p, parent.Composite.Kind()))
		}
		if parent.Final {
			return errors.TypeMismatch(errors.PhaseValidate, typePath(idx, "super"), st.Composite.Kind().String(),
				fmt.Sprintf("supertype %d is final", p))
		}
	}
	return nil
}

// computeDepths walks every declared chain once, rejecting cycles.
func (t *Table) computeDepths() error {
	n := uint(len(t.types))
	done := bitset.New(n)
	onPath := bitset.New(n)
	var path []uint32

	for i := range t.types {
		if done.Test(uint(i)) {
			continue
		}
		path = path[:0]
		cur := uint32(i)
		for !done.Test(uint(cur)) {
			if onPath.Test(uint(cur)) {
				return errors.Cycle(errors.PhaseValidate, typePath(cur, "super"), cur)
			}
			onPath.Set(uint(cur))
			path = append(path, cur)
			p, ok := t.types[cur].Super()
			if !ok {
				break
			}
			cur = p
		}
		for k := len(path) - 1; k >= 0; k-- {
			node := path[k]
			if p, ok := t.types[node].Super(); ok {
				t.depth[node] = t.depth[p] + 1
			}
			done.Set(uint(node))
			onPath.Clear(uint(node))
		}
	}
	return nil
}

func (t *Table) checkDeclaredSubtyping() error {
	for i := range t.types {
		p, ok := t.types[i].Super()
		if !ok {
			continue
		}
		r := &relation{}
		if !r.compositeSub(t.types[i].Composite, t.types[p].Composite) {
			return errors.TypeMismatch(errors.PhaseValidate, typePath(uint32(i), "super"),
				t.types[i].Composite.String(),
				fmt.Sprintf("not a structural subtype of declared supertype %d", p))
		}
	}
	return nil
}

// canonicalize replaces every reference type with its canonical instance.
func (t *Table) canonicalize(s *Set) error {
	for i := range t.types {
		err := t.forEachRefSlot(uint32(i), func(slot *ValueType, path []string) error {
			c, err := s.Insert((*slot).(*RefType))
			if err != nil {
				return errors.Wrap(errors.PhaseValidate, errors.KindAllocation, err,
					"canonicalize "+strings.Join(path, "."))
			}
			*slot = c
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) forEachRef(i uint32, fn func(*RefType, []string) error) error {
	return t.forEachRefSlot(i, func(slot *ValueType, path []string) error {
		return fn((*slot).(*RefType), path)
	})
}

// forEachRefSlot visits every reference-typed slot of type i.
func (t *Table) forEachRefSlot(i uint32, fn func(*ValueType, []string) error) error {
	visit := func(slot *ValueType, path func() []string) error {
		if _, ok := (*slot).(*RefType); !ok {
			return nil
		}
		return fn(slot, path())
	}
	switch c := t.types[i].Composite.(type) {
	case *FuncType:
		for k := range c.Params {
			if err := visit(&c.Params[k], func() []string { return typePath(i, "param", strconv.Itoa(k)) }); err != nil {
				return err
			}
		}
		for k := range c.Results {
			if err := visit(&c.Results[k], func() []string { return typePath(i, "result", strconv.Itoa(k)) }); err != nil {
				return err
			}
		}
	case *StructType:
		for k := range c.Fields {
			if err := visit(&c.Fields[k].Type, func() []string { return typePath(i, "field", strconv.Itoa(k)) }); err != nil {
				return err
			}
		}
	case *ArrayType:
		return visit(&c.Elem.Type, func() []string { return typePath(i, "elem") })
	}
	return nil
}

func (t *Table) kindOf(i uint32) (CompKind, bool) {
	if t == nil || int(i) >= len(t.types) {
		return 0, false
	}
	return t.types[i].Composite.Kind(), true
}

func (t *Table) shapeOf(i uint32) uint64 {
	if t == nil || int(i) >= len(t.shape) {
		return 0
	}
	return t.shape[i]
}
