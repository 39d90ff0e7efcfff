// Package errors provides structured error types for the wasm-gc library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: descriptor path, type description, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindOutOfBounds).
//		Path("type", "3", "field", "1").
//		Type("(ref null 9)").
//		Detail("type index 9 outside table of 4 types").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseValidate, path, 9, 4)
//	err := errors.AllocationFailed(errors.PhaseCanon, 12, 4)
//
// Relation queries (equality, subtyping) never produce errors. Only table
// construction, decoding and the allocating operations of the canonical set do.
//
// All errors implement the standard error interface and support errors.Is/As.
// ErrOutOfMemory matches any allocation failure.
package errors
