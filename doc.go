// Package wasmgc provides the structural type-relation engine for WebAssembly
// modules using the garbage-collection type extensions.
//
// The library decides equality and subtyping between struct, array and
// function types drawn from one or more recursive type groups, and
// deduplicates structurally identical reference types through a canonical set.
//
// # Architecture Overview
//
//	wasmgc/          Root package with the host Allocator and Memory interfaces
//	├── gctype/      Type tables, heap-type classifier, equality, subtyping, canonical set
//	├── wasm/        GC type section decoding and encoding
//	├── wat/         Text-format reader for type definitions
//	├── alloc/       Host allocators (Go heap quota, wazero linear memory)
//	├── errors/      Structured error types
//	└── cmd/gctypes  Command line and TUI relation browser
//
// # Quick Start
//
// Build a table and query it:
//
//	tbl, err := gctype.NewTable([]gctype.SubType{
//	    {Composite: &gctype.StructType{Fields: []gctype.FieldType{
//	        {Type: gctype.I32}, {Type: gctype.I32},
//	    }}},
//	    {Composite: &gctype.StructType{Fields: []gctype.FieldType{
//	        {Type: gctype.I32}, {Type: gctype.I32}, {Type: gctype.I32},
//	    }}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gctype.IsSubtype(tbl, 1, tbl, 0) // true: width subtyping
//
// Decode a module and canonicalize its reference types:
//
//	set, _ := gctype.NewSet(64)
//	mod, err := wasm.ParseModuleCanonical(data, set)
//
// Or read the same definitions from text:
//
//	mod, err := wat.Parse(`(module (type $p (struct (field i32))))`, gctype.WithCanonicalSet(set))
//
// # Thread Safety
//
// Tables are immutable once built; relation queries may run concurrently.
// A canonical Set is not synchronized and must be guarded by the caller when
// shared between goroutines.
package wasmgc
