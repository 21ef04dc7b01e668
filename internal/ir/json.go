package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StepList is an ordered sequence of steps with a tagged JSON form.
type StepList []Step

// DecodeError reports a step that could not be decoded.
type DecodeError struct {
	Path    string // e.g. "steps[2].steps[0]"
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// stepDoc is the flat wire form of every step kind.
// Fields irrelevant to a kind are left nil.
type stepDoc struct {
	Type         StepKind  `json:"type"`
	Device       string    `json:"device,omitempty"`
	Action       Action    `json:"action,omitempty"`
	Amount       *flexInt  `json:"amount,omitempty"`
	Time         *flexInt  `json:"time,omitempty"` // older documents name the delay amount "time"
	Unit         DelayUnit `json:"unit,omitempty"`
	Motor        string    `json:"motor,omitempty"`
	Command      string    `json:"command,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Param1       *Arg      `json:"param1,omitempty"`
	Param2       *Arg      `json:"param2,omitempty"`
	Param3       *Arg      `json:"param3,omitempty"`
	Timeout      *flexInt  `json:"timeout,omitempty"`
	WaitComplete *flexBool `json:"wait_complete,omitempty"`
	Count        *flexInt  `json:"count,omitempty"`
	Steps        StepList  `json:"steps,omitempty"`
	Description  string    `json:"description,omitempty"`
	Pulses       *flexInt  `json:"pulses,omitempty"`
	Repeats      *flexInt  `json:"repeats,omitempty"`
}

// stepOut is the encoded form. Numbers are written as JSON numbers.
type stepOut struct {
	Type         StepKind  `json:"type"`
	Device       string    `json:"device,omitempty"`
	Action       Action    `json:"action,omitempty"`
	Amount       *int64    `json:"amount,omitempty"`
	Unit         DelayUnit `json:"unit,omitempty"`
	Motor        string    `json:"motor,omitempty"`
	Command      string    `json:"command,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Param1       *Arg      `json:"param1,omitempty"`
	Param2       *Arg      `json:"param2,omitempty"`
	Param3       *Arg      `json:"param3,omitempty"`
	Timeout      *int64    `json:"timeout,omitempty"`
	WaitComplete *bool     `json:"wait_complete,omitempty"`
	Count        *int64    `json:"count,omitempty"`
	Steps        StepList  `json:"steps,omitempty"`
	Description  string    `json:"description,omitempty"`
	Pulses       *int64    `json:"pulses,omitempty"`
	Repeats      *int64    `json:"repeats,omitempty"`
}

// MarshalJSON implements json.Marshaler for StepList.
// A nil list encodes as [] so documents always carry a steps array.
func (l StepList) MarshalJSON() ([]byte, error) {
	out := make([]stepOut, len(l))
	for i, s := range l {
		doc, err := encodeStep(s)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		out[i] = doc
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for StepList.
// Unknown step kinds and unknown fields are rejected.
func (l *StepList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &DecodeError{Path: "steps", Message: err.Error()}
	}

	steps := make(StepList, 0, len(raw))
	for i, r := range raw {
		path := fmt.Sprintf("steps[%d]", i)

		var doc stepDoc
		dec := json.NewDecoder(bytes.NewReader(r))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			var inner *DecodeError
			if errors.As(err, &inner) {
				return &DecodeError{Path: path + "." + inner.Path, Message: inner.Message}
			}
			return &DecodeError{Path: path, Message: err.Error()}
		}

		s, err := decodeStep(&doc)
		if err != nil {
			return &DecodeError{Path: path, Message: err.Error()}
		}
		steps = append(steps, s)
	}

	*l = steps
	return nil
}

// decodeStep converts a wire document into a typed step, applying defaults.
func decodeStep(doc *stepDoc) (Step, error) {
	switch doc.Type {
	case KindValve:
		return ValveControl{Device: doc.Device, Action: actionOrDefault(doc.Action)}, nil

	case KindPump:
		return PumpControl{Device: doc.Device, Action: actionOrDefault(doc.Action)}, nil

	case KindDelay:
		d := Delay{Unit: doc.Unit}
		switch {
		case doc.Amount != nil:
			d.Amount = int64(*doc.Amount)
		case doc.Time != nil:
			d.Amount = int64(*doc.Time)
		}
		if d.Unit == "" {
			d.Unit = UnitMillis
		}
		return d, nil

	case KindMotor:
		m := MotorControl{
			Motor:   doc.Motor,
			Command: MotorCommand(doc.Command),
			Param1:  argOrDefault(doc.Param1, DefaultParam1),
			Param2:  argOrDefault(doc.Param2, DefaultParam2),
			Param3:  argOrDefault(doc.Param3, DefaultParam3),
		}
		if m.Command == "" {
			m.Command = DefaultCommand
		}
		mode, err := decodeMode(doc)
		if err != nil {
			return nil, err
		}
		m.Mode = mode
		return m, nil

	case KindMotorWait:
		return MotorWait{Motor: doc.Motor, Timeout: intOrDefault(doc.Timeout, DefaultTimeoutMillis)}, nil

	case KindLoop:
		return Loop{
			Count: int(intOrDefault(doc.Count, DefaultLoopCount)),
			Steps: doc.Steps,
		}, nil

	case KindComposite:
		return CompositeAction{Description: doc.Description}, nil

	case KindNeedleWash:
		return NeedleWash{
			Pulses:  intOrDefault(doc.Pulses, DefaultWashPulses),
			Repeats: int(intOrDefault(doc.Repeats, DefaultWashRepeats)),
		}, nil

	case "":
		return nil, fmt.Errorf("missing step type")

	default:
		return nil, fmt.Errorf("unknown step type %q", doc.Type)
	}
}

// decodeMode builds the motor mode sum type. The timeout field belongs to
// sync mode and wait_complete to async mode; mixing them is an error.
func decodeMode(doc *stepDoc) (MotorMode, error) {
	switch doc.Mode {
	case "sync":
		if doc.WaitComplete != nil {
			return nil, fmt.Errorf("wait_complete is only allowed in async mode")
		}
		return SyncMode{Timeout: intOrDefault(doc.Timeout, DefaultTimeoutMillis)}, nil
	case "async", "":
		if doc.Timeout != nil {
			return nil, fmt.Errorf("timeout is only allowed in sync mode")
		}
		wait := DefaultWaitComplete
		if doc.WaitComplete != nil {
			wait = bool(*doc.WaitComplete)
		}
		return AsyncMode{WaitComplete: wait}, nil
	default:
		return nil, fmt.Errorf("unknown motor mode %q", doc.Mode)
	}
}

// encodeStep converts a typed step into its wire form.
func encodeStep(s Step) (stepOut, error) {
	out := stepOut{Type: s.Kind()}
	switch v := s.(type) {
	case ValveControl:
		out.Device, out.Action = v.Device, v.Action
	case PumpControl:
		out.Device, out.Action = v.Device, v.Action
	case Delay:
		out.Amount, out.Unit = ptr(v.Amount), v.Unit
	case MotorControl:
		out.Motor = v.Motor
		out.Command = string(v.Command)
		out.Param1, out.Param2, out.Param3 = ptr(v.Param1), ptr(v.Param2), ptr(v.Param3)
		switch mode := v.Mode.(type) {
		case SyncMode:
			out.Mode = mode.ModeName()
			out.Timeout = ptr(mode.Timeout)
		case AsyncMode:
			out.Mode = mode.ModeName()
			out.WaitComplete = ptr(mode.WaitComplete)
		default:
			return out, fmt.Errorf("motor step has no mode")
		}
	case MotorWait:
		out.Motor, out.Timeout = v.Motor, ptr(v.Timeout)
	case Loop:
		out.Count = ptr(int64(v.Count))
		out.Steps = v.Steps
	case CompositeAction:
		out.Description = v.Description
	case NeedleWash:
		out.Pulses, out.Repeats = ptr(v.Pulses), ptr(int64(v.Repeats))
	default:
		return out, fmt.Errorf("unsupported step type %T", s)
	}
	return out, nil
}

func actionOrDefault(a Action) Action {
	if a == "" {
		return ActionOpen
	}
	return a
}

func argOrDefault(a *Arg, def Arg) Arg {
	if a == nil || *a == "" {
		return def
	}
	return *a
}

func intOrDefault(n *flexInt, def int64) int64 {
	if n == nil {
		return def
	}
	return int64(*n)
}

func ptr[T any](v T) *T {
	return &v
}
