// Package ir provides the step intermediate representation for liqgen.
//
// This package contains the process and step types shared by every other
// internal package. ir imports nothing internal, so it stays the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Step is a sealed interface; the set of step kinds is closed
//   - Motor mode is a sum type (SyncMode or AsyncMode), never optional fields
//   - Defaults are applied once, when a step is decoded, never at render time
//   - NO float types anywhere - durations and counts are integers
//   - All JSON tags use snake_case
//   - Unknown step kinds are rejected when decoding
package ir
