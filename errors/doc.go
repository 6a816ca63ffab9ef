// Package errors provides structured error types for the serialization codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Decode errors carry the failing byte offset and a short context window of the input,
// so a corrupt or adversarial blob can be located without dumping it whole.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindSyntax).
//		At(data, pos).
//		Detail("expected %q", ';').
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.BadReference(errors.PhaseDecode, data, pos, 7, 3)
//	err := errors.Depth(errors.PhaseDecode, pos, 512)
//
// Soft errors (Soft == true) are never returned from a decode call. They are
// handed to a diagnostics sink while decoding continues with a placeholder.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
