// Package aml implements an interpreter for AML (ACPI Machine Language),
// the bytecode encoding used by firmware ACPI tables to describe platform
// devices and control methods.
//
// The interpreter builds a persistent namespace of named objects while a
// table is loaded and evaluates control methods on demand. Method execution
// is driven by per-opcode parse programs: small micro-instruction streams
// that describe how each opcode decodes its operands and when its handler
// runs. Operands that are themselves opcodes preempt the current parse
// program and are decoded in a nested operation context, which avoids any
// need for a recursive parser.
//
// Where the printed ACPI specification and the dominant OS implementation
// disagree, this package follows the OS implementation.
package aml
