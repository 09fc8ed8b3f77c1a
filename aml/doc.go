// Package aml implements the evaluation engine for ACPI Machine Language
// bytecode: a decoder driven by per-opcode parse programs, a stack of call
// frames that re-enters itself to evaluate dynamically-typed
// sub-expressions, and a refcounted object/namespace model.
//
// Table loading, operation-region backends, and host primitives (logging,
// allocation, mutexes, the monotonic clock) are not implemented here; they
// are consumed through the Host interface in host.go.
package aml
