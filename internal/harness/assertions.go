package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/liqgen/internal/codegen"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Language codegen.Format // Language whose code failed
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s [%s]: expected %s, got %s", e.Type, e.Language, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the generated code and
// returns one message per failure. An assertion naming a language that was
// not rendered fails.
func EvaluateAssertions(code map[codegen.Format]string, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		targets := codegen.ValidFormats
		if a.Language != "" {
			lang, err := codegen.ParseFormat(string(a.Language))
			if err != nil {
				failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
				continue
			}
			if _, ok := code[lang]; !ok {
				failures = append(failures, fmt.Sprintf("assertions[%d]: %s was not rendered", i, lang))
				continue
			}
			targets = []codegen.Format{lang}
		}

		for _, lang := range targets {
			src, ok := code[lang]
			if !ok {
				continue
			}
			if err := evaluate(lang, src, a); err != nil {
				failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
			}
		}
	}
	return failures
}

func evaluate(lang codegen.Format, code string, a Assertion) error {
	switch a.Type {
	case AssertCodeContains:
		return assertCodeContains(lang, code, a)
	case AssertCodeAbsent:
		return assertCodeAbsent(lang, code, a)
	case AssertCodeOrder:
		return assertCodeOrder(lang, code, a)
	case AssertCodeCount:
		return assertCodeCount(lang, code, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertCodeContains checks that the code contains the text.
func assertCodeContains(lang codegen.Format, code string, a Assertion) error {
	if strings.Contains(code, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCodeContains,
		Language: lang,
		Expected: fmt.Sprintf("%q in code", a.Text),
		Actual:   "not found",
	}
}

// assertCodeAbsent checks that the code does not contain the text.
func assertCodeAbsent(lang codegen.Format, code string, a Assertion) error {
	if n := strings.Count(code, a.Text); n > 0 {
		return &AssertionError{
			Type:     AssertCodeAbsent,
			Language: lang,
			Expected: fmt.Sprintf("no %q in code", a.Text),
			Actual:   fmt.Sprintf("%d occurrence(s)", n),
		}
	}
	return nil
}

// assertCodeOrder checks that the lines appear in order. Lines are compared
// after trimming surrounding whitespace; other lines may come between.
func assertCodeOrder(lang codegen.Format, code string, a Assertion) error {
	lines := strings.Split(code, "\n")
	pos := 0
	for i, want := range a.Lines {
		want = strings.TrimSpace(want)
		found := false
		for pos < len(lines) {
			got := strings.TrimSpace(lines[pos])
			pos++
			if got == want {
				found = true
				break
			}
		}
		if !found {
			actual := "missing"
			if i > 0 {
				actual = fmt.Sprintf("missing after %q", strings.TrimSpace(a.Lines[i-1]))
			}
			return &AssertionError{
				Type:     AssertCodeOrder,
				Language: lang,
				Expected: fmt.Sprintf("line %q", want),
				Actual:   actual,
			}
		}
	}
	return nil
}

// assertCodeCount checks that the text appears exactly Count times.
func assertCodeCount(lang codegen.Format, code string, a Assertion) error {
	if n := strings.Count(code, a.Text); n != a.Count {
		return &AssertionError{
			Type:     AssertCodeCount,
			Language: lang,
			Expected: fmt.Sprintf("%d occurrence(s) of %q", a.Count, a.Text),
			Actual:   fmt.Sprintf("%d", n),
		}
	}
	return nil
}
