// Package harness runs conformance scenarios against the code generator.
//
// A scenario names a process document, the languages to render it in, the
// validation and lint codes it is expected to produce, and assertions over
// the generated code.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: flush_a
//	description: "One valve opening renders the SV1 token"
//	process: processes/flush_a.json   # relative to the scenario file
//	languages: [c, lua]               # default: every language
//	expect:
//	  errors: []                      # validation codes; non-empty skips rendering
//	  warnings: [W301]                # lint codes, compared as a set
//	assertions:
//	  - type: code_contains
//	    language: c
//	    text: "valve_set(VALVE_SV1, ON);"
//	  - type: code_order
//	    lines: ["// Step 1: SV1 open", "valve_set(VALVE_SV1, ON);"]
//	  - type: code_count
//	    text: "usleep("
//	    count: 2
//	  - type: code_absent
//	    text: TODO
//
// # Assertion Types
//
//   - code_contains: the text appears in the generated code
//   - code_absent: the text does not appear
//   - code_order: each line appears, in order, as a trimmed line of the code
//   - code_count: the text appears exactly count times
//
// An assertion without a language applies to every rendered language.
//
// # Deterministic Testing
//
// Every run renders with the fixed clock from testutil and the builtin
// device table unless WithRegistry says otherwise. The process is also
// stored in a fresh in-memory library and rendered again from the stored
// copy; the two renders must be identical.
package harness
