package harness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/liqgen/internal/codegen"
)

// RunWithGolden executes a scenario and compares the code of every rendered
// language against testdata/golden/{scenario.Name}.{language}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. Mismatches fail t via goldie;
// scenario failures fail t via t.Errorf.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	for _, f := range result.Failures {
		t.Errorf("%s: %s", scenario.Name, f)
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's code against golden files
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, format := range codegen.ValidFormats {
		code, ok := result.Code[format]
		if !ok {
			continue
		}
		g.Assert(t, name+"."+string(format), []byte(code))
	}
}

// GoldenPath returns the golden file of a scenario file for one language:
// golden/<file name>.<language>.golden next to the scenario.
func GoldenPath(scenarioFile string, format codegen.Format) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+"."+string(format)+".golden")
}

// WriteGolden writes the code of every rendered language as the golden
// files of scenarioFile.
func WriteGolden(scenarioFile string, result *Result) error {
	for _, format := range codegen.ValidFormats {
		code, ok := result.Code[format]
		if !ok {
			continue
		}
		path := GoldenPath(scenarioFile, format)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(code), 0644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
	}
	return nil
}

// CompareGolden returns the languages whose code differs from their golden
// file. Languages without a golden file are not compared.
func CompareGolden(scenarioFile string, result *Result) ([]codegen.Format, error) {
	var mismatched []codegen.Format
	for _, format := range codegen.ValidFormats {
		code, ok := result.Code[format]
		if !ok {
			continue
		}
		golden, err := os.ReadFile(GoldenPath(scenarioFile, format))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read golden file: %w", err)
		}
		if string(golden) != code {
			mismatched = append(mismatched, format)
		}
	}
	return mismatched, nil
}
