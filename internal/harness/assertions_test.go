package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/liqgen/internal/codegen"
)

const sampleC = `void x(void)
{
    // Step 1: SV1 open
    valve_set(VALVE_SV1, ON);
    usleep(100*1000);
    usleep(100*1000);
}
`

func TestEvaluateAssertions(t *testing.T) {
	code := map[codegen.Format]string{codegen.FormatC: sampleC}

	tests := []struct {
		name      string
		assertion Assertion
		wantFail  string
	}{
		{"contains", Assertion{Type: AssertCodeContains, Text: "VALVE_SV1"}, ""},
		{"contains missing", Assertion{Type: AssertCodeContains, Text: "VALVE_SV2"}, "not found"},
		{"absent", Assertion{Type: AssertCodeAbsent, Text: "TODO"}, ""},
		{"absent present", Assertion{Type: AssertCodeAbsent, Text: "usleep"}, "2 occurrence(s)"},
		{"order", Assertion{Type: AssertCodeOrder, Lines: []string{"// Step 1: SV1 open", "usleep(100*1000);", "}"}}, ""},
		{"order reversed", Assertion{Type: AssertCodeOrder, Lines: []string{"valve_set(VALVE_SV1, ON);", "// Step 1: SV1 open"}}, `missing after "valve_set(VALVE_SV1, ON);"`},
		{"order partial line", Assertion{Type: AssertCodeOrder, Lines: []string{"valve_set"}}, "missing"},
		{"count", Assertion{Type: AssertCodeCount, Text: "usleep(", Count: 2}, ""},
		{"count zero", Assertion{Type: AssertCodeCount, Text: "motor", Count: 0}, ""},
		{"count wrong", Assertion{Type: AssertCodeCount, Text: "usleep(", Count: 3}, "3 occurrence(s)"},
		{"language not rendered", Assertion{Type: AssertCodeContains, Language: codegen.FormatLua, Text: "x"}, "lua was not rendered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(code, []Assertion{tt.assertion})
			if tt.wantFail == "" {
				assert.Empty(t, failures)
				return
			}
			if assert.Len(t, failures, 1) {
				assert.Contains(t, failures[0], tt.wantFail)
			}
		})
	}
}

func TestEvaluateAssertionsAppliesToEveryLanguage(t *testing.T) {
	code := map[codegen.Format]string{
		codegen.FormatC:   "valve_set(VALVE_SV1, ON);",
		codegen.FormatLua: "valve.sv1:set(true)",
	}

	failures := EvaluateAssertions(code, []Assertion{{Type: AssertCodeContains, Text: "VALVE_SV1"}})
	if assert.Len(t, failures, 1) {
		assert.Contains(t, failures[0], "[lua]")
	}

	failures = EvaluateAssertions(code, []Assertion{{Type: AssertCodeContains, Language: codegen.FormatC, Text: "VALVE_SV1"}})
	assert.Empty(t, failures)
}

func TestAssertionErrorMessage(t *testing.T) {
	err := &AssertionError{Type: AssertCodeCount, Language: codegen.FormatC, Expected: "2", Actual: "3"}
	assert.Equal(t, "code_count [c]: expected 2, got 3", err.Error())
}
