package harness

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/roach88/liqgen/internal/codegen"
	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/devices"
	"github.com/roach88/liqgen/internal/ir"
	"github.com/roach88/liqgen/internal/processfile"
	"github.com/roach88/liqgen/internal/store"
	"github.com/roach88/liqgen/internal/testutil"
)

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string `json:"scenario"`

	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Errors and Warnings are the validation and lint codes produced.
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	// Code is the generated code per language. Empty when the process is
	// invalid.
	Code map[codegen.Format]string `json:"code,omitempty"`

	// Failures describes every mismatch. Empty if Pass is true.
	Failures []string `json:"failures,omitempty"`
}

// newResult creates a new passing result.
func newResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Errors:   []string{},
		Warnings: []string{},
		Code:     map[codegen.Format]string{},
		Failures: []string{},
	}
}

// fail records a mismatch and marks the result as failed.
func (r *Result) fail(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Option configures a run.
type Option func(*runner)

type runner struct {
	registry *devices.Registry
	fault    codegen.FaultPolicy
	logger   *zap.Logger
}

// WithRegistry renders against reg instead of the builtin device table.
func WithRegistry(reg *devices.Registry) Option {
	return func(r *runner) { r.registry = reg }
}

// WithFaultPolicy sets the fault policy used for C output.
func WithFaultPolicy(p codegen.FaultPolicy) Option {
	return func(r *runner) { r.fault = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *runner) { r.logger = l }
}

// Run executes a scenario and returns the result. An error means the
// scenario could not run at all; mismatches are reported in the result.
//
// Each run uses a fresh in-memory library for isolation.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	r := &runner{
		registry: devices.Builtin(),
		fault:    codegen.DefaultFaultPolicy,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	languages, err := scenarioLanguages(scenario)
	if err != nil {
		return nil, err
	}

	doc, err := processfile.Load(scenario.Process)
	if err != nil {
		return nil, fmt.Errorf("load process: %w", err)
	}
	p := doc.Process

	result := newResult(scenario.Name)
	for _, e := range compiler.Validate(p) {
		result.Errors = append(result.Errors, e.Code)
	}
	for _, w := range compiler.Lint(p, r.registry) {
		result.Warnings = append(result.Warnings, w.Code)
	}
	checkExpect(scenario.Expect, result)
	if len(result.Errors) > 0 {
		return result, nil
	}

	lib, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory library: %w", err)
	}
	defer lib.Close()

	saved, _, err := lib.SaveProcess(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("store process: %w", err)
	}
	stored, err := lib.ProcessByID(ctx, saved.ID)
	if err != nil {
		return nil, fmt.Errorf("reload process: %w", err)
	}

	for _, format := range languages {
		code, err := r.render(p, format)
		if err != nil {
			return nil, err
		}
		result.Code[format] = code

		again, err := r.render(stored.Process, format)
		if err != nil {
			return nil, err
		}
		if again != code {
			result.fail("%s: code rendered from the library copy differs from the document", format)
		}
		if _, err := lib.SaveArtifact(ctx, saved.ID, string(format), code); err != nil {
			return nil, fmt.Errorf("store %s artifact: %w", format, err)
		}
		r.logger.Debug("rendered scenario",
			zap.String("scenario", scenario.Name),
			zap.String("language", string(format)),
			zap.Int("bytes", len(code)))
	}

	for _, msg := range EvaluateAssertions(result.Code, scenario.Assertions) {
		result.fail("%s", msg)
	}

	return result, nil
}

func (r *runner) render(p *ir.Process, format codegen.Format) (string, error) {
	code, err := codegen.Render(p, format,
		codegen.WithRegistry(r.registry),
		codegen.WithFaultPolicy(r.fault),
		codegen.WithClock(testutil.NewDeterministicClock().Now),
		codegen.WithLogger(r.logger),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", format, err)
	}
	return code, nil
}

// scenarioLanguages normalizes the scenario's languages, defaulting to all.
func scenarioLanguages(s *Scenario) ([]codegen.Format, error) {
	if len(s.Languages) == 0 {
		return slices.Clone(codegen.ValidFormats), nil
	}
	out := make([]codegen.Format, 0, len(s.Languages))
	for _, l := range s.Languages {
		f, err := codegen.ParseFormat(string(l))
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// checkExpect compares the produced codes with the expect clause. Errors
// are compared as lists in order of appearance, warnings as sets.
func checkExpect(expect *ExpectClause, result *Result) {
	if expect == nil {
		if len(result.Errors) > 0 {
			result.fail("expected a valid process, got errors %v", result.Errors)
		}
		return
	}
	if !slices.Equal(expect.Errors, result.Errors) {
		result.fail("errors: expected %v, got %v", expect.Errors, result.Errors)
	}
	if want, got := codeSet(expect.Warnings), codeSet(result.Warnings); !slices.Equal(want, got) {
		result.fail("warnings: expected %v, got %v", want, got)
	}
}

func codeSet(codes []string) []string {
	out := slices.Clone(codes)
	sort.Strings(out)
	return slices.Compact(out)
}
