package ir

// Process is a named, ordered list of steps plus document metadata.
type Process struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       StepList `json:"steps"`
	CreatedTime string   `json:"created_time,omitempty"` // informational, set on save
	Version     string   `json:"version,omitempty"`      // informational, never enforced
}

// Step is a sealed interface over the closed set of step kinds.
// Only the types in this package implement it.
type Step interface {
	Kind() StepKind
	step() // Sealed
}

// StepKind is the wire discriminator of a step ("type" in JSON).
type StepKind string

// Step kinds.
const (
	KindValve      StepKind = "valve"
	KindPump       StepKind = "pump"
	KindDelay      StepKind = "delay"
	KindMotor      StepKind = "motor"
	KindMotorWait  StepKind = "motor_wait"
	KindLoop       StepKind = "loop"
	KindComposite  StepKind = "composite"
	KindNeedleWash StepKind = "needle_wash"
)

// AllKinds lists every step kind in declaration order.
var AllKinds = []StepKind{
	KindValve, KindPump, KindDelay, KindMotor,
	KindMotorWait, KindLoop, KindComposite, KindNeedleWash,
}

// Action is the on/off action of a valve or pump step.
type Action string

const (
	ActionOpen  Action = "open"
	ActionClose Action = "close"
)

// DelayUnit is the unit of a delay amount.
type DelayUnit string

const (
	UnitMillis  DelayUnit = "ms"
	UnitSeconds DelayUnit = "s"
)

// MaxDelayMillis is the longest single delay a process may request (24h).
const MaxDelayMillis int64 = 24 * 60 * 60 * 1000

// MotorCommand names a motor controller command.
type MotorCommand string

const (
	CmdReset     MotorCommand = "reset"
	CmdMoveStep  MotorCommand = "move_step"
	CmdMoveSpeed MotorCommand = "move_speed"
	CmdStop      MotorCommand = "stop"
)

// ValidMotorCommands defines allowed motor commands.
var ValidMotorCommands = map[MotorCommand]bool{
	CmdReset:     true,
	CmdMoveStep:  true,
	CmdMoveSpeed: true,
	CmdStop:      true,
}

// Defaults applied when a decoded step omits a field.
const (
	DefaultParam1         Arg   = "0"
	DefaultParam2         Arg   = "20000"
	DefaultParam3         Arg   = "50000"
	DefaultTimeoutMillis  int64 = 20000
	DefaultWashPulses     int64 = 1800
	DefaultWashRepeats          = 1
	DefaultLoopCount            = 1
	DefaultCommand              = CmdReset
	DefaultWaitComplete         = true
)

// ValveControl opens or closes a valve.
type ValveControl struct {
	Device string
	Action Action
}

// PumpControl switches a pump on or off.
type PumpControl struct {
	Device string
	Action Action
}

// Delay pauses for Amount units.
type Delay struct {
	Amount int64
	Unit   DelayUnit
}

// Millis returns the delay in milliseconds.
func (d Delay) Millis() int64 {
	if d.Unit == UnitSeconds {
		return d.Amount * 1000
	}
	return d.Amount
}

// MotorControl issues a motor command in sync or async mode.
type MotorControl struct {
	Motor   string
	Command MotorCommand
	Mode    MotorMode
	Param1  Arg // steps or speed
	Param2  Arg // speed
	Param3  Arg // acceleration
}

// MotorMode is a sealed sum type: SyncMode or AsyncMode.
type MotorMode interface {
	ModeName() string
	motorMode() // Sealed
}

// SyncMode blocks until motion completes or Timeout milliseconds elapse.
type SyncMode struct {
	Timeout int64
}

// AsyncMode starts motion and returns. When WaitComplete is false a later
// MotorWait step is expected to join the motion.
type AsyncMode struct {
	WaitComplete bool
}

func (SyncMode) ModeName() string  { return "sync" }
func (AsyncMode) ModeName() string { return "async" }
func (SyncMode) motorMode()        {}
func (AsyncMode) motorMode()       {}

// MotorWait waits for a previously started async motion.
type MotorWait struct {
	Motor   string
	Timeout int64
}

// Loop repeats its body Count times.
type Loop struct {
	Count int
	Steps StepList
}

// CompositeAction is a free-text action. Text that matches the needle wash
// grammar renders as a NeedleWash; anything else renders as a placeholder.
type CompositeAction struct {
	Description string
}

// NeedleWash moves the sample needle down and up by Pulses, Repeats times.
type NeedleWash struct {
	Pulses  int64
	Repeats int
}

func (ValveControl) Kind() StepKind    { return KindValve }
func (PumpControl) Kind() StepKind     { return KindPump }
func (Delay) Kind() StepKind           { return KindDelay }
func (MotorControl) Kind() StepKind    { return KindMotor }
func (MotorWait) Kind() StepKind       { return KindMotorWait }
func (Loop) Kind() StepKind            { return KindLoop }
func (CompositeAction) Kind() StepKind { return KindComposite }
func (NeedleWash) Kind() StepKind      { return KindNeedleWash }

func (ValveControl) step()    {}
func (PumpControl) step()     {}
func (Delay) step()           {}
func (MotorControl) step()    {}
func (MotorWait) step()       {}
func (Loop) step()            {}
func (CompositeAction) step() {}
func (NeedleWash) step()      {}

// NewSyncMotor builds a sync MotorControl with default motion parameters.
func NewSyncMotor(motor string, cmd MotorCommand, timeout int64) MotorControl {
	return MotorControl{
		Motor:   motor,
		Command: cmd,
		Mode:    SyncMode{Timeout: timeout},
		Param1:  DefaultParam1,
		Param2:  DefaultParam2,
		Param3:  DefaultParam3,
	}
}

// NewAsyncMotor builds an async MotorControl with default motion parameters.
func NewAsyncMotor(motor string, cmd MotorCommand, waitComplete bool) MotorControl {
	return MotorControl{
		Motor:   motor,
		Command: cmd,
		Mode:    AsyncMode{WaitComplete: waitComplete},
		Param1:  DefaultParam1,
		Param2:  DefaultParam2,
		Param3:  DefaultParam3,
	}
}

// WithParams returns a copy of m with the given motion parameters.
func (m MotorControl) WithParams(p1, p2, p3 Arg) MotorControl {
	m.Param1, m.Param2, m.Param3 = p1, p2, p3
	return m
}

// Walk calls fn for every step in steps, depth first, with the loop depth
// of the step (0 for top level). Walk stops early if fn returns false.
func Walk(steps StepList, fn func(s Step, depth int) bool) {
	walk(steps, 0, fn)
}

func walk(steps StepList, depth int, fn func(Step, int) bool) bool {
	for _, s := range steps {
		if !fn(s, depth) {
			return false
		}
		if l, ok := s.(Loop); ok {
			if !walk(l.Steps, depth+1, fn) {
				return false
			}
		}
	}
	return true
}
