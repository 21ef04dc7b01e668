package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/liqgen/internal/codegen"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Process is the path of the process document under test. LoadScenario
	// resolves it relative to the scenario file.
	Process string `yaml:"process"`

	// Languages to render. Empty means every language.
	Languages []codegen.Format `yaml:"languages,omitempty"`

	// Expect lists the validation and lint codes the process produces.
	// Nil means the process must be valid; warnings are then not checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the generated code.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// path is the scenario file, empty for scenarios built in code.
	path string
}

// ExpectClause specifies the expected diagnostics.
type ExpectClause struct {
	Errors   []string `yaml:"errors,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
}

// Assertion validates generated code.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Language restricts the assertion to one language.
	Language codegen.Format `yaml:"language,omitempty"`

	// Text is the substring for code_contains, code_absent and code_count.
	Text string `yaml:"text,omitempty"`

	// Lines are the expected lines for code_order.
	Lines []string `yaml:"lines,omitempty"`

	// Count is the expected number of occurrences for code_count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCodeContains = "code_contains"
	AssertCodeAbsent   = "code_absent"
	AssertCodeOrder    = "code_order"
	AssertCodeCount    = "code_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Process != "" && !filepath.IsAbs(scenario.Process) {
		scenario.Process = filepath.Join(filepath.Dir(path), scenario.Process)
	}
	scenario.path = path

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios expands each path to scenario files: files are taken as
// given, directories are searched recursively for .yaml and .yml files.
// The result is sorted within each directory.
func FindScenarios(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scenario path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml":
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no scenario files found in %s", p)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Process == "" {
		return fmt.Errorf("process is required")
	}
	if _, err := os.Stat(s.Process); os.IsNotExist(err) {
		return fmt.Errorf("process file not found: %s", s.Process)
	}

	for i, lang := range s.Languages {
		if _, err := codegen.ParseFormat(string(lang)); err != nil {
			return fmt.Errorf("languages[%d]: %w", i, err)
		}
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}
	if s.Expect != nil && len(s.Expect.Errors) > 0 && len(s.Assertions) > 0 {
		return fmt.Errorf("assertions cannot run when errors are expected")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Language != "" {
		if _, err := codegen.ParseFormat(string(a.Language)); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	switch a.Type {
	case AssertCodeContains, AssertCodeAbsent:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertCodeOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for code_order", index)
		}
	case AssertCodeCount:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for code_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for code_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
