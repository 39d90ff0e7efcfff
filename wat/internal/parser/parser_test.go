package parser

import (
	"strings"
	"testing"

	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wat/internal/token"
)

func parse(t *testing.T, src string) *Module {
	t.Helper()
	mod, err := New(token.Tokenize(src)).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return mod
}

func typeAt(t *testing.T, mod *Module, group, idx int) gctype.SubType {
	t.Helper()
	if group >= len(mod.Groups) || idx >= len(mod.Groups[group]) {
		t.Fatalf("no type %d in group %d (groups: %d)", idx, group, len(mod.Groups))
	}
	return mod.Groups[group][idx]
}

func TestParseEmptyModule(t *testing.T) {
	mod := parse(t, "(module)")
	if len(mod.Groups) != 0 {
		t.Errorf("expected 0 groups, got %d", len(mod.Groups))
	}
	if mod.Name != "" {
		t.Errorf("expected no name, got %q", mod.Name)
	}
}

func TestParseModuleWithName(t *testing.T) {
	mod := parse(t, "(module $shapes)")
	if mod.Name != "shapes" {
		t.Errorf("expected name shapes, got %q", mod.Name)
	}
}

func TestParseStruct(t *testing.T) {
	mod := parse(t, `(module
		(type $point (struct (field $x i32) (field $y (mut f64)) (field i8 i16))))`)

	st := typeAt(t, mod, 0, 0)
	s, ok := st.Composite.(*gctype.StructType)
	if !ok {
		t.Fatalf("expected struct, got %T", st.Composite)
	}
	want := []gctype.FieldType{
		{Type: gctype.I32},
		{Type: gctype.F64, Mutable: true},
		{Type: gctype.I8},
		{Type: gctype.I16},
	}
	if len(s.Fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(s.Fields))
	}
	for i, f := range s.Fields {
		if f != want[i] {
			t.Errorf("field %d = %v, want %v", i, f, want[i])
		}
	}
	if mod.TypeNames[0] != "point" {
		t.Errorf("expected type name point, got %q", mod.TypeNames[0])
	}
}

func TestParseArrayAndFunc(t *testing.T) {
	mod := parse(t, `(module
		(type $bytes (array (mut i8)))
		(type $fn (func (param $a i32) (param i64 f32) (result anyref) (result (ref $bytes)))))`)

	arr, ok := typeAt(t, mod, 0, 0).Composite.(*gctype.ArrayType)
	if !ok {
		t.Fatal("expected array type")
	}
	if arr.Elem != (gctype.FieldType{Type: gctype.I8, Mutable: true}) {
		t.Errorf("array elem = %v", arr.Elem)
	}

	fn, ok := typeAt(t, mod, 1, 0).Composite.(*gctype.FuncType)
	if !ok {
		t.Fatal("expected func type")
	}
	if len(fn.Params) != 3 || fn.Params[0] != gctype.I32 || fn.Params[2] != gctype.F32 {
		t.Errorf("params = %v", fn.Params)
	}
	if len(fn.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(fn.Results))
	}
	ref := fn.Results[1].(*gctype.RefType)
	if ref.Nullable || ref.Heap != gctype.Concrete(0) {
		t.Errorf("result 1 = %v, want (ref 0)", ref)
	}
}

func TestParseValueTypes(t *testing.T) {
	tests := []struct {
		src  string
		want gctype.ValueType
	}{
		{"i32", gctype.I32},
		{"i64", gctype.I64},
		{"f32", gctype.F32},
		{"f64", gctype.F64},
		{"v128", gctype.V128},
		{"funcref", gctype.RefNull(gctype.HeapFunc)},
		{"externref", gctype.RefNull(gctype.HeapExtern)},
		{"anyref", gctype.RefNull(gctype.HeapAny)},
		{"eqref", gctype.RefNull(gctype.HeapEq)},
		{"i31ref", gctype.RefNonNull(gctype.HeapI31)},
		{"dataref", gctype.RefNonNull(gctype.HeapData)},
		{"(ref null any)", gctype.RefNull(gctype.HeapAny)},
		{"(ref eq)", gctype.RefNonNull(gctype.HeapEq)},
		{"(ref null 0)", gctype.RefNull(gctype.Concrete(0))},
		{"(ref $t)", gctype.RefNonNull(gctype.Concrete(0))},
		{"(rtt $t)", &gctype.RefType{Heap: gctype.RTT(0)}},
		{"(rtt 2 $t)", &gctype.RefType{Heap: gctype.RTTN(2, 0)}},
		{"(rtt 1 0)", &gctype.RefType{Heap: gctype.RTTN(1, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			mod := parse(t, "(module (type $t (struct (field "+tt.src+"))))")
			got := typeAt(t, mod, 0, 0).Composite.(*gctype.StructType).Fields[0].Type
			if want, ok := tt.want.(*gctype.RefType); ok {
				ref, ok := got.(*gctype.RefType)
				if !ok || *ref != *want {
					t.Errorf("got %v, want %v", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSubtypes(t *testing.T) {
	mod := parse(t, `(module
		(type $base (sub (struct (field i32))))
		(type $leaf (sub final $base (struct (field i32) (field i64))))
		(type (sub 1 (struct (field i32) (field i64)))))`)

	base := typeAt(t, mod, 0, 0)
	if base.Final || len(base.Parents) != 0 {
		t.Errorf("base = %v, want open and without parents", &base)
	}
	leaf := typeAt(t, mod, 1, 0)
	if !leaf.Final || len(leaf.Parents) != 1 || leaf.Parents[0] != 0 {
		t.Errorf("leaf = %v, want final subtype of 0", &leaf)
	}
	third := typeAt(t, mod, 2, 0)
	if len(third.Parents) != 1 || third.Parents[0] != 1 {
		t.Errorf("third parents = %v, want [1]", third.Parents)
	}
}

func TestParseRecGroup(t *testing.T) {
	mod := parse(t, `(module
		(type $pre (struct))
		(rec
			(type $tree (struct (field (ref null $forest))))
			(type $forest (struct (field (ref $tree)) (field (ref null $forest)))))
		(rec)
		(type $after (array (ref $tree))))`)

	if len(mod.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(mod.Groups))
	}
	if len(mod.Groups[1]) != 2 {
		t.Fatalf("expected 2 types in rec group, got %d", len(mod.Groups[1]))
	}

	tree := typeAt(t, mod, 1, 0).Composite.(*gctype.StructType)
	if h := tree.Fields[0].Type.(*gctype.RefType).Heap; h != gctype.Concrete(2) {
		t.Errorf("tree field heap = %v, want 2", h)
	}
	after := typeAt(t, mod, 2, 0).Composite.(*gctype.ArrayType)
	if h := after.Elem.Type.(*gctype.RefType).Heap; h != gctype.Concrete(1) {
		t.Errorf("array elem heap = %v, want 1", h)
	}

	want := map[uint32]string{0: "pre", 1: "tree", 2: "forest", 3: "after"}
	for idx, name := range want {
		if mod.TypeNames[idx] != name {
			t.Errorf("TypeNames[%d] = %q, want %q", idx, mod.TypeNames[idx], name)
		}
	}
}

func TestParseSkipsOtherFields(t *testing.T) {
	mod := parse(t, `(module
		(memory 1)
		(func $f (param i32) (result i32) (local.get 0))
		(type $t (struct))
		(export "f" (func $f)))`)
	if len(mod.Groups) != 1 {
		t.Errorf("expected 1 group, got %d", len(mod.Groups))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input, wantErr string
	}{
		{"missing_module", "(type (struct))", "expected 'module'"},
		{"unclosed", "(module (type (struct)", "unexpected end"},
		{"unknown_value_type", "(module (type (struct (field bogus))))", "unknown value type"},
		{"unknown_type_name", "(module (type (struct (field (ref $nope)))))", "unknown type"},
		{"unknown_form", "(module (type (union)))", "unknown type form"},
		{"unknown_heap", "(module (type (struct (field (ref bogus)))))", "unknown heap type"},
		{"duplicate_name", "(module (type $a (struct)) (type $a (struct)))", "duplicate type"},
		{"named_field_two_types", "(module (type (struct (field $x i32 i64))))", "exactly one type"},
		{"named_param_two_types", "(module (type (func (param $x i32 i64))))", "exactly one type"},
		{"bad_number", "(module (type (struct (field (ref 0xzz)))))", "invalid number"},
		{"trailing", "(module) (module)", "after module"},
		{"packed_outside_field", "(module (type (func (param i8))))", "unknown value type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(token.Tokenize(tt.input)).Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
