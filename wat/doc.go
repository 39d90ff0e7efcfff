// Package wat reads GC type definitions from WebAssembly Text format.
//
// Only the type-level content of a module is read: type definitions,
// recursion groups and their names. Functions, memories, exports and other
// module fields are skipped, so a full text module can be given as input.
//
// Basic usage:
//
//	mod, err := wat.Parse(`(module $shapes
//		(type $point (struct (field $x i32) (field $y i32)))
//		(rec
//			(type $list (struct (field (ref null $list)) (field anyref)))))`)
//
// Parse returns a wasm.Module with its type table built, so the types can be
// related at once with gctype.TypesEqual and gctype.IsSubtype. Compile
// produces the equivalent binary module.
//
// Supported type syntax:
//   - (struct (field $name? fieldtype*)*), (array fieldtype), (func (param ...) (result ...))
//   - (sub final? typeidx* comptype) and (rec (type ...)*)
//   - Field types: storagetype or (mut storagetype), with packed i8 and i16
//   - Value types: i32 i64 f32 f64 v128 and the shorthands funcref externref
//     anyref eqref i31ref dataref
//   - Reference types: (ref null? heaptype), (rtt n? typeidx)
//   - Heap types: func extern any eq i31 data, or a type index
//   - Type indices by number or $name, including forward references
//   - Comments: line (;;) and block (; ;)
package wat
