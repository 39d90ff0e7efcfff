package gctype_test

import (
	"errors"
	"testing"

	wasmerrors "github.com/wippyai/wasm-gc/errors"
	"github.com/wippyai/wasm-gc/gctype"
)

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name   string
		groups [][]gctype.SubType
		kind   wasmerrors.Kind
	}{
		{
			name:   "dangling index",
			groups: [][]gctype.SubType{{structOf(imm(gctype.TypeRef(3, true)))}},
			kind:   wasmerrors.KindOutOfBounds,
		},
		{
			name: "forward reference into later group",
			groups: [][]gctype.SubType{
				{structOf(imm(gctype.TypeRef(1, true)))},
				{structOf()},
			},
			kind: wasmerrors.KindOutOfBounds,
		},
		{
			name: "dangling rtt",
			groups: [][]gctype.SubType{
				{structOf(imm(&gctype.RefType{Heap: gctype.RTT(7)}))},
			},
			kind: wasmerrors.KindOutOfBounds,
		},
		{
			name: "self supertype",
			groups: [][]gctype.SubType{
				{{Composite: &gctype.StructType{}, Parents: []uint32{0}}},
			},
			kind: wasmerrors.KindCycle,
		},
		{
			name: "supertype cycle",
			groups: [][]gctype.SubType{{
				{Composite: &gctype.StructType{}, Parents: []uint32{1}},
				{Composite: &gctype.StructType{}, Parents: []uint32{0}},
			}},
			kind: wasmerrors.KindCycle,
		},
		{
			name: "supertype of another kind",
			groups: [][]gctype.SubType{{
				arrayOf(imm(gctype.I32)),
				{Composite: &gctype.StructType{}, Parents: []uint32{0}},
			}},
			kind: wasmerrors.KindTypeMismatch,
		},
		{
			name: "final supertype",
			groups: [][]gctype.SubType{{
				{Composite: &gctype.StructType{}, Final: true},
				{Composite: &gctype.StructType{}, Parents: []uint32{0}},
			}},
			kind: wasmerrors.KindTypeMismatch,
		},
		{
			name: "supertype not refined",
			groups: [][]gctype.SubType{{
				structOf(imm(gctype.I64)),
				{Composite: &gctype.StructType{Fields: []gctype.FieldType{imm(gctype.I32)}}, Parents: []uint32{0}},
			}},
			kind: wasmerrors.KindTypeMismatch,
		},
		{
			name: "supertype in later group",
			groups: [][]gctype.SubType{
				{{Composite: &gctype.StructType{}, Parents: []uint32{1}}},
				{structOf()},
			},
			kind: wasmerrors.KindOutOfBounds,
		},
		{
			name: "two supertypes",
			groups: [][]gctype.SubType{{
				structOf(),
				structOf(),
				{Composite: &gctype.StructType{}, Parents: []uint32{0, 1}},
			}},
			kind: wasmerrors.KindUnsupported,
		},
		{
			name:   "packed parameter",
			groups: [][]gctype.SubType{{funcOf(vals(gctype.I8), nil)}},
			kind:   wasmerrors.KindTypeMismatch,
		},
		{
			name:   "missing composite",
			groups: [][]gctype.SubType{{{}}},
			kind:   wasmerrors.KindNilPointer,
		},
		{
			name:   "unknown abstract heap type",
			groups: [][]gctype.SubType{{structOf(imm(gctype.RefNull(gctype.AbstractHeap(-0x40))))}},
			kind:   wasmerrors.KindInvalidData,
		},
		{
			name:   "unknown value type",
			groups: [][]gctype.SubType{{structOf(imm(gctype.NumType(0x01)))}},
			kind:   wasmerrors.KindInvalidData,
		},
		{
			name:   "nil reference",
			groups: [][]gctype.SubType{{structOf(imm((*gctype.RefType)(nil)))}},
			kind:   wasmerrors.KindNilPointer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gctype.NewTableGroups(tt.groups)
			if err == nil {
				t.Fatal("NewTableGroups() expected error")
			}
			want := &wasmerrors.Error{Phase: wasmerrors.PhaseValidate, Kind: tt.kind}
			if !errors.Is(err, want) {
				t.Errorf("NewTableGroups() error = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestNewTableGroups_Accessors(t *testing.T) {
	tbl, err := gctype.NewTableGroups([][]gctype.SubType{
		{structOf(imm(gctype.TypeRef(1, true))), structOf(imm(gctype.TypeRef(0, true)))},
		{structOf(imm(gctype.TypeRef(0, false)))},
	})
	if err != nil {
		t.Fatalf("NewTableGroups() error = %v", err)
	}

	if tbl.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tbl.Len())
	}
	groups := tbl.Groups()
	if len(groups) != 2 || groups[0] != (gctype.Group{Start: 0, Len: 2}) || groups[1] != (gctype.Group{Start: 2, Len: 1}) {
		t.Errorf("Groups() = %v", groups)
	}
	if g, ok := tbl.GroupOf(2); !ok || g.Start != 2 || g.End() != 3 {
		t.Errorf("GroupOf(2) = %v, %v", g, ok)
	}
	if _, ok := tbl.GroupOf(3); ok {
		t.Error("GroupOf(3) should fail")
	}
	if _, ok := tbl.Type(3); ok {
		t.Error("Type(3) should fail")
	}
	if tbl.Depth(0) != 0 || len(tbl.Supertypes(0)) != 0 {
		t.Error("type without supertype should have depth 0")
	}

	other := mustTable(t, structOf())
	if tbl.ID() == other.ID() {
		t.Error("tables should have distinct identities")
	}
}

func TestNewTable_BindsAndCopies(t *testing.T) {
	field := gctype.TypeRef(0, true)
	input := []gctype.SubType{structOf(imm(field))}

	tbl := mustTable(t, input...)
	st, _ := tbl.Type(0)
	ref := st.Composite.(*gctype.StructType).Fields[0].Type.(*gctype.RefType)

	if ref == field {
		t.Error("table should not alias input descriptors")
	}
	heap, ok := ref.Heap.(gctype.ConcreteHeap)
	if !ok || heap.Table != tbl {
		t.Errorf("field heap = %#v, want bound to table", ref.Heap)
	}
	if field.Heap.(gctype.ConcreteHeap).Table != nil {
		t.Error("input descriptor should stay unbound")
	}

	input[0].Composite.(*gctype.StructType).Fields[0].Mutable = true
	if st.Composite.(*gctype.StructType).Fields[0].Mutable {
		t.Error("mutating input should not affect the table")
	}
}

func TestNewTable_ForeignReferences(t *testing.T) {
	lib := mustTable(t, structOf(imm(gctype.I32)))

	user := mustTable(t,
		structOf(imm(gctype.RefNull(gctype.ConcreteHeap{Table: lib, Index: 0}))),
		structOf(imm(gctype.RefNull(gctype.ConcreteHeap{Table: lib, Index: 0})), imm(gctype.I64)),
	)
	if !gctype.IsSubtype(user, 1, user, 0) {
		t.Error("types referencing a foreign table should relate")
	}

	local := mustTable(t,
		structOf(imm(gctype.I32)),
		structOf(imm(gctype.TypeRef(0, true))),
	)
	if !gctype.TypesEqual(user, 0, local, 1) {
		t.Error("foreign and local references to equal types should be equal")
	}

	_, err := gctype.NewTable([]gctype.SubType{
		structOf(imm(gctype.RefNull(gctype.ConcreteHeap{Table: lib, Index: 1}))),
	})
	if !errors.Is(err, &wasmerrors.Error{Kind: wasmerrors.KindOutOfBounds}) {
		t.Errorf("NewTable() error = %v, want out of bounds", err)
	}
}
