package gctype_test

import (
	"testing"

	"github.com/wippyai/wasm-gc/gctype"
)

func structOf(fields ...gctype.FieldType) gctype.SubType {
	return gctype.SubType{Composite: &gctype.StructType{Fields: fields}}
}

func funcOf(params, results []gctype.ValueType) gctype.SubType {
	return gctype.SubType{Composite: &gctype.FuncType{Params: params, Results: results}}
}

func arrayOf(elem gctype.FieldType) gctype.SubType {
	return gctype.SubType{Composite: &gctype.ArrayType{Elem: elem}}
}

func imm(v gctype.ValueType) gctype.FieldType { return gctype.FieldType{Type: v} }

func mut(v gctype.ValueType) gctype.FieldType { return gctype.FieldType{Type: v, Mutable: true} }

func vals(v ...gctype.ValueType) []gctype.ValueType { return v }

func mustTable(t *testing.T, types ...gctype.SubType) *gctype.Table {
	t.Helper()
	tbl, err := gctype.NewTable(types)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return tbl
}
