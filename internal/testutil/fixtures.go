package testutil

import "github.com/roach88/liqgen/internal/ir"

// FlushA is the smallest useful process: one valve opening.
func FlushA() *ir.Process {
	return &ir.Process{
		Name:  "Flush A",
		Steps: ir.StepList{ir.ValveControl{Device: "SV1", Action: ir.ActionOpen}},
	}
}

// PrimeLine exercises every step kind once, including both motor modes and
// a composite action that renders as a placeholder.
func PrimeLine() *ir.Process {
	return &ir.Process{
		Name:        "Prime-Line 2",
		Description: "Prime reagent line\nthen wash the needle",
		Steps: ir.StepList{
			ir.PumpControl{Device: "Q1", Action: ir.ActionOpen},
			ir.Delay{Amount: 2, Unit: ir.UnitSeconds},
			ir.NewSyncMotor("needle_s_z", ir.CmdMoveStep, 15000).WithParams("1800", "20000", "50000"),
			ir.NewAsyncMotor("needle_s_pump", ir.CmdReset, true),
			ir.NewAsyncMotor("needle_s_x", ir.CmdMoveSpeed, false).WithParams("-200", "SPEED_X", "50000"),
			ir.MotorWait{Motor: "needle_s_x", Timeout: 8000},
			ir.Loop{Count: 3, Steps: ir.StepList{
				ir.ValveControl{Device: "SV2", Action: ir.ActionClose},
				ir.Delay{Amount: 100, Unit: ir.UnitMillis},
			}},
			ir.NeedleWash{Pulses: 1800, Repeats: 2},
			ir.CompositeAction{Description: "stir gently"},
		},
	}
}

// FlushAJSON is FlushA as a process document.
const FlushAJSON = `{
  "name": "Flush A",
  "description": "",
  "steps": [
    {"type": "valve", "device": "SV1", "action": "open"}
  ]
}
`
