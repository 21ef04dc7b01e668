package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/liqgen/internal/ir"
)

// processFields are the fields a CUE process struct may declare.
var processFields = map[string]bool{
	"name":         true,
	"description":  true,
	"steps":        true,
	"created_time": true,
	"version":      true,
}

// CompileProcess parses a CUE value into a Process.
//
// The CUE value should be the process struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`process: FlushA: { steps: [...] }`)
//	p, err := CompileProcess(v.LookupPath(cue.ParsePath("process.FlushA")))
//
// The name defaults to the struct label. Steps use the same tagged form as
// JSON documents, so defaults and strictness match the JSON decoder.
func CompileProcess(v cue.Value) (*ir.Process, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	p := &ir.Process{}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		if label := iter.Label(); !processFields[label] {
			return nil, &CompileError{
				Field:   label,
				Message: fmt.Sprintf("unknown field %q", label),
				Pos:     iter.Value().Pos(),
			}
		}
	}

	if labels := v.Path().Selectors(); len(labels) > 0 {
		p.Name = labelName(labels[len(labels)-1])
	}
	if err := optionalString(v, "name", &p.Name); err != nil {
		return nil, err
	}
	if err := optionalString(v, "description", &p.Description); err != nil {
		return nil, err
	}
	if err := optionalString(v, "version", &p.Version); err != nil {
		return nil, err
	}
	if err := optionalString(v, "created_time", &p.CreatedTime); err != nil {
		return nil, err
	}

	stepsVal := v.LookupPath(cue.ParsePath("steps"))
	if !stepsVal.Exists() {
		return nil, &CompileError{
			Field:   "steps",
			Message: "steps is required",
			Pos:     v.Pos(),
		}
	}
	p.Steps, err = parseSteps(stepsVal)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func optionalString(v cue.Value, field string, dst *string) error {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil
	}
	s, err := fv.String()
	if err != nil {
		return &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()}
	}
	*dst = s
	return nil
}

// parseSteps decodes each list element through the JSON step decoder so
// errors can point at the element's CUE position.
func parseSteps(v cue.Value) (ir.StepList, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "steps", Message: "steps must be a list", Pos: v.Pos()}
	}

	steps := ir.StepList{}
	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		field := fmt.Sprintf("steps[%d]", i)

		if err := elem.Validate(cue.Concrete(true)); err != nil {
			return nil, formatCUEError(err)
		}
		data, err := elem.MarshalJSON()
		if err != nil {
			return nil, formatCUEError(err)
		}

		var one ir.StepList
		if err := json.Unmarshal(append(append([]byte{'['}, data...), ']'), &one); err != nil {
			msg := err.Error()
			var de *ir.DecodeError
			if errors.As(err, &de) {
				field += strings.TrimPrefix(de.Path, "steps[0]")
				msg = de.Message
			}
			return nil, &CompileError{Field: field, Message: msg, Pos: elem.Pos()}
		}
		steps = append(steps, one...)
	}
	return steps, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// labelName returns a field label without CUE quoting, so
// process: "Flush A": {...} is named Flush A.
func labelName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel && sel.ConstraintType() < cue.PatternConstraint {
		return sel.Unquoted()
	}
	return sel.String()
}
