// Package gctype decides equality and subtyping between WebAssembly GC types
// and canonicalizes reference types.
//
// # Type Tables
//
// A Table holds function, struct and array types grouped into recursive
// groups. Types reference each other by index, including cycles:
//
//	list, err := gctype.NewTable([]gctype.SubType{
//		{Composite: &gctype.StructType{Fields: []gctype.FieldType{
//			{Type: gctype.I32},
//			{Type: gctype.TypeRef(0, true)}, // (ref null 0): the list itself
//		}}},
//	})
//
// Construction deep copies the descriptors, binds every concrete heap type to
// the new table and validates indices and declared supertypes. Afterwards the
// table is immutable.
//
// # Relations
//
// TypesEqual and IsSubtype compare a type of one table with a type of another
// (or the same) table. Both are total predicates and never fail. Recursive
// types are handled coinductively: a pair already being compared is assumed
// to be related.
//
// Function types are invariant. Struct types admit width subtyping and depth
// subtyping on immutable fields; mutable fields must be equal. A non-nullable
// reference is a subtype of the nullable reference to the same heap type.
// The abstract heap types are ordered as
//
//	i31 <: eq, data <: eq, eq <: any, func <: any, extern <: any
//
// with concrete struct and array types under data and concrete function types
// under func.
//
// Declared supertypes are a shortcut only: a concrete type is also a subtype
// of any type it structurally refines.
//
// # Canonical Sets
//
// A Set deduplicates reference types by structure, so canonical descriptors
// can be compared by pointer:
//
//	set, _ := gctype.NewSet(64)
//	a, _ := set.Insert(list.Ref(0, true))
//	b, _ := set.Insert(other.Ref(3, true)) // same structure as list type 0
//	// a == b
//
// Storage is charged to a wasmgc.Allocator; allocation failure is reported
// as an error matching errors.ErrOutOfMemory and leaves the set unchanged.
//
// # Thread Safety
//
// Tables and all relation functions are safe for concurrent use. A Set is
// not; callers sharing one must serialize access.
package gctype
