// Package errors provides structured error types for the KSM disassembler.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the entity path, the word offset being
// read and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformedEntity).
//		Path("fn:main", "ReadTableEntry", "table").
//		At(12).
//		Detail("expected table, got %v", sym).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Exhausted(errors.PhaseDecode, 12)
//	err := errors.FormatViolation(path, 12, "take/give length mismatch")
//
// Match categories with the standard library:
//
//	if errors.Is(err, kerrors.ErrExhausted) { ... }
package errors
