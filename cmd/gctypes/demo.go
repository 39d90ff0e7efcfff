package main

import (
	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wasm"
)

func field(v gctype.ValueType) gctype.FieldType { return gctype.FieldType{Type: v} }

func structType(fields ...gctype.FieldType) *gctype.StructType {
	return &gctype.StructType{Fields: fields}
}

// demoModules builds two small modules whose types relate in every way the
// engine distinguishes: equal, declared and structural subtypes, and
// unrelated.
func demoModules(set *gctype.Set) (left, right namedModule, err error) {
	shapes, err := gctype.NewTable([]gctype.SubType{
		{Composite: structType(field(gctype.I32), field(gctype.I32))},
		{Composite: structType(field(gctype.I32), field(gctype.I32), field(gctype.I32)), Parents: []uint32{0}},
		{Composite: structType(field(gctype.I32), field(gctype.TypeRef(2, true)))},
		{Composite: &gctype.FuncType{
			Params:  []gctype.ValueType{gctype.TypeRef(0, false)},
			Results: []gctype.ValueType{gctype.TypeRef(1, true)},
		}},
	}, gctype.WithCanonicalSet(set))
	if err != nil {
		return left, right, err
	}

	vectors, err := gctype.NewTable([]gctype.SubType{
		{Composite: structType(field(gctype.I32), field(gctype.I32))},
		{Composite: structType(field(gctype.I32), field(gctype.TypeRef(1, true)))},
		{Composite: structType(field(gctype.I32), field(gctype.I32), field(gctype.I32), field(gctype.F64))},
		{Composite: &gctype.ArrayType{Elem: gctype.FieldType{Type: gctype.I32, Mutable: true}}},
	}, gctype.WithCanonicalSet(set))
	if err != nil {
		return left, right, err
	}

	left = namedModule{name: "shapes", mod: &wasm.Module{
		Types:     shapes,
		Name:      "shapes",
		TypeNames: map[uint32]string{0: "point2d", 1: "point3d", 2: "list", 3: "project"},
	}}
	right = namedModule{name: "vectors", mod: &wasm.Module{
		Types:     vectors,
		Name:      "vectors",
		TypeNames: map[uint32]string{0: "vec2", 1: "node", 2: "vec3w", 3: "ints"},
	}}
	return left, right, nil
}
