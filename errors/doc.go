// Package errors provides structured error types for the bpf-linker library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: logical path, input file, metadata node kind,
// and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSanitize, errors.KindNodeMismatch).
//		Node("DIDerivedType").
//		Detail("expected composite base type").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingMagic()
//	err := errors.InvalidInput("crate.rlib")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
