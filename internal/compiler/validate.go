package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/roach88/liqgen/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrNoSteps          = "E201" // process has no steps
	ErrDeviceEmpty      = "E202" // valve or pump device is empty or not a single token
	ErrMotorEmpty       = "E203" // motor is empty or not a single token
	ErrInvalidDelay     = "E204" // delay amount <= 0, over MaxDelayMillis, or unknown unit
	ErrInvalidLoopCount = "E205" // loop count < 1
	ErrEmptyLoop        = "E206" // loop body is empty
	ErrNestedBlock      = "E207" // loop body holds a loop, composite or needle wash
	ErrInvalidParam     = "E208" // motor parameter is not an integer or identifier
	ErrInvalidTimeout   = "E209" // timeout <= 0
	ErrEmptyComposite   = "E210" // composite description is empty
	ErrInvalidWash      = "E211" // needle wash pulses or repeats < 1
	ErrInvalidAction    = "E212" // unknown action or motor command
	ErrInvalidStep      = "E213" // nil step or nil process
)

// ValidationError represents a process validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is every problem found in one process.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d validation error(s): %s", len(errs), strings.Join(msgs, "; "))
}

// Validate checks a process before generation.
// Returns all errors found (does not fail-fast).
func Validate(p *ir.Process) []ValidationError {
	if p == nil {
		return []ValidationError{{Field: "process", Message: "process is nil", Code: ErrInvalidStep}}
	}

	var errs []ValidationError
	if len(p.Steps) == 0 {
		errs = append(errs, ValidationError{
			Field:   "steps",
			Message: "process must have at least one step",
			Code:    ErrNoSteps,
		})
	}
	for i, s := range p.Steps {
		errs = append(errs, validateStep(fmt.Sprintf("steps[%d]", i), s, false)...)
	}
	return errs
}

func validateStep(path string, s ir.Step, inLoop bool) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   path + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	checkName := func(field, code, what, name string) {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			add(field, code, "%s is required", what)
		case strings.IndexFunc(name, notTokenRune) >= 0:
			add(field, code, "%s %q must be a single token without spaces or control characters", what, name)
		}
	}

	switch v := s.(type) {
	case ir.ValveControl:
		checkName(".device", ErrDeviceEmpty, "valve device", v.Device)
		if !validAction(v.Action) {
			add(".action", ErrInvalidAction, "invalid action %q, must be \"open\" or \"close\"", v.Action)
		}

	case ir.PumpControl:
		checkName(".device", ErrDeviceEmpty, "pump device", v.Device)
		if !validAction(v.Action) {
			add(".action", ErrInvalidAction, "invalid action %q, must be \"open\" or \"close\"", v.Action)
		}

	case ir.Delay:
		if v.Amount <= 0 {
			add(".amount", ErrInvalidDelay, "delay must be positive, got %d", v.Amount)
		}
		if v.Unit != ir.UnitMillis && v.Unit != ir.UnitSeconds {
			add(".unit", ErrInvalidDelay, "invalid unit %q, must be \"ms\" or \"s\"", v.Unit)
		} else if v.Amount > 0 && exceedsMaxDelay(v) {
			add(".amount", ErrInvalidDelay, "delay of %d%s exceeds the %dms limit", v.Amount, v.Unit, ir.MaxDelayMillis)
		}

	case ir.MotorControl:
		checkName(".motor", ErrMotorEmpty, "motor", v.Motor)
		if !ir.ValidMotorCommands[v.Command] {
			add(".command", ErrInvalidAction, "invalid motor command %q", v.Command)
		}
		for i, p := range []ir.Arg{v.Param1, v.Param2, v.Param3} {
			if p != "" && !p.Valid() {
				add(fmt.Sprintf(".param%d", i+1), ErrInvalidParam,
					"parameter %q must be an integer or an identifier", p)
			}
		}
		if m, ok := v.Mode.(ir.SyncMode); ok && m.Timeout <= 0 {
			add(".timeout", ErrInvalidTimeout, "timeout must be positive, got %d", m.Timeout)
		}

	case ir.MotorWait:
		checkName(".motor", ErrMotorEmpty, "motor", v.Motor)
		if v.Timeout <= 0 {
			add(".timeout", ErrInvalidTimeout, "timeout must be positive, got %d", v.Timeout)
		}

	case ir.Loop:
		if inLoop {
			add("", ErrNestedBlock, "loops cannot be nested")
		}
		if v.Count < 1 {
			add(".count", ErrInvalidLoopCount, "loop count must be at least 1, got %d", v.Count)
		}
		if len(v.Steps) == 0 {
			add(".steps", ErrEmptyLoop, "loop body must have at least one step")
		}
		for i, child := range v.Steps {
			errs = append(errs, validateStep(fmt.Sprintf("%s.steps[%d]", path, i), child, true)...)
		}

	case ir.CompositeAction:
		if inLoop {
			add("", ErrNestedBlock, "composite actions are not allowed in a loop body")
		}
		if strings.TrimSpace(v.Description) == "" {
			add(".description", ErrEmptyComposite, "composite description is required")
		}

	case ir.NeedleWash:
		if inLoop {
			add("", ErrNestedBlock, "needle wash is not allowed in a loop body")
		}
		if v.Pulses < 1 {
			add(".pulses", ErrInvalidWash, "pulses must be at least 1, got %d", v.Pulses)
		}
		if v.Repeats < 1 {
			add(".repeats", ErrInvalidWash, "repeats must be at least 1, got %d", v.Repeats)
		}

	default:
		add("", ErrInvalidStep, "unsupported step %T", s)
	}
	return errs
}

func validAction(a ir.Action) bool {
	return a == ir.ActionOpen || a == ir.ActionClose
}

// exceedsMaxDelay compares before converting so large second counts cannot
// overflow.
func exceedsMaxDelay(d ir.Delay) bool {
	if d.Unit == ir.UnitSeconds {
		return d.Amount > ir.MaxDelayMillis/1000
	}
	return d.Amount > ir.MaxDelayMillis
}

func notTokenRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}
