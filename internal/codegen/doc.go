// Package codegen renders liquid-handling processes as controller source code.
//
// One renderer walks the step IR and delegates every statement to a dialect
// selected by Format: C for the embedded controller firmware, Lua for the
// instrument scripting runtime. Both dialects see the same step walk, so the
// two outputs always agree on structure (step order, loop bodies, fault
// checks); only the statement syntax differs.
//
// Rendering is total: given any decoded process it produces text and never
// fails. Generate runs validation first and is the entry point for callers
// holding untrusted input.
package codegen
