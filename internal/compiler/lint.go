package compiler

import (
	"fmt"

	"github.com/roach88/liqgen/internal/devices"
	"github.com/roach88/liqgen/internal/ir"
)

// Lint warning codes (W300-W399)
const (
	WarnUnknownDevice   = "W301" // identifier not in the device table
	WarnUnjoinedMotion  = "W302" // async motion never waited for
	WarnInferredWash    = "W303" // composite text parsed as a needle wash
	WarnCompositeTODO   = "W304" // composite renders as a TODO placeholder
	WarnWrongDeviceKind = "W305" // device kind does not match the step
)

// Warning is a lint finding. Warnings never block generation.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Code, w.Field, w.Message)
}

// located is a step with its document path, in execution order.
type located struct {
	path string
	step ir.Step
}

func flatten(steps ir.StepList, prefix string) []located {
	var out []located
	for i, s := range steps {
		path := fmt.Sprintf("%ssteps[%d]", prefix, i)
		out = append(out, located{path: path, step: s})
		if l, ok := s.(ir.Loop); ok {
			out = append(out, flatten(l.Steps, path+".")...)
		}
	}
	return out
}

// Lint reports likely mistakes in a process that still generates: unknown
// or mismatched devices, async motion nobody waits for, and composite
// actions whose rendering is guessed.
func Lint(p *ir.Process, reg *devices.Registry) []Warning {
	if p == nil {
		return nil
	}
	if reg == nil {
		reg = devices.Builtin()
	}

	var warns []Warning
	add := func(field, code, format string, args ...any) {
		warns = append(warns, Warning{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}
	checkDevice := func(field, name string, want devices.Kind) {
		if name == "" {
			return
		}
		d, ok := reg.Lookup(name)
		if !ok {
			add(field, WarnUnknownDevice, "%q is not in the device table, the name is emitted as is", name)
			return
		}
		if d.Kind != want {
			add(field, WarnWrongDeviceKind, "%q is a %s, expected a %s", name, d.Kind, want)
		}
	}

	steps := flatten(p.Steps, "")
	for i, ls := range steps {
		switch v := ls.step.(type) {
		case ir.ValveControl:
			checkDevice(ls.path+".device", v.Device, devices.KindValve)
		case ir.PumpControl:
			checkDevice(ls.path+".device", v.Device, devices.KindPump)
		case ir.MotorWait:
			checkDevice(ls.path+".motor", v.Motor, devices.KindMotor)
		case ir.MotorControl:
			checkDevice(ls.path+".motor", v.Motor, devices.KindMotor)
			if m, ok := v.Mode.(ir.AsyncMode); ok && !m.WaitComplete && !waitedLater(steps[i+1:], v.Motor, reg) {
				add(ls.path, WarnUnjoinedMotion,
					"async %s motion is never waited for, add a motor_wait step", v.Motor)
			}
		case ir.CompositeAction:
			if w, ok := ir.ParseNeedleWash(v.Description); ok {
				add(ls.path, WarnInferredWash,
					"description reads as a needle wash (%d pulses x%d), use a needle_wash step", w.Pulses, w.Repeats)
			} else {
				add(ls.path, WarnCompositeTODO, "composite action renders as a TODO placeholder")
			}
		}
	}
	return warns
}

func waitedLater(rest []located, motor string, reg *devices.Registry) bool {
	token := reg.CToken(motor)
	for _, ls := range rest {
		if w, ok := ls.step.(ir.MotorWait); ok && reg.CToken(w.Motor) == token {
			return true
		}
	}
	return false
}
