package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/liqgen/internal/devices"
	"github.com/roach88/liqgen/internal/ir"
)

func lintCodes(warns []Warning) []string {
	codes := make([]string, len(warns))
	for i, w := range warns {
		codes[i] = w.Code
	}
	return codes
}

func TestLintCleanProcess(t *testing.T) {
	p := &ir.Process{Steps: ir.StepList{
		ir.ValveControl{Device: "SV1", Action: ir.ActionOpen},
		ir.PumpControl{Device: "Q1", Action: ir.ActionOpen},
		ir.NewAsyncMotor("needle_s_pump", ir.CmdReset, true),
		ir.NeedleWash{Pulses: 1800, Repeats: 1},
	}}
	assert.Empty(t, Lint(p, devices.Builtin()))
}

func TestLintUnknownAndWrongKind(t *testing.T) {
	p := &ir.Process{Steps: ir.StepList{
		ir.ValveControl{Device: "SV99", Action: ir.ActionOpen},
		ir.PumpControl{Device: "SV2", Action: ir.ActionOpen},
		ir.MotorWait{Motor: "Q1", Timeout: 100},
	}}

	warns := Lint(p, devices.Builtin())
	require.Len(t, warns, 3)
	assert.Equal(t, []string{WarnUnknownDevice, WarnWrongDeviceKind, WarnWrongDeviceKind}, lintCodes(warns))
	assert.Equal(t, "steps[0].device", warns[0].Field)
	assert.Contains(t, warns[1].Message, `"SV2" is a valve, expected a pump`)
	assert.Equal(t, "steps[2].motor", warns[2].Field)
}

func TestLintUnjoinedAsyncMotion(t *testing.T) {
	unjoined := &ir.Process{Steps: ir.StepList{
		ir.NewAsyncMotor("needle_s_x", ir.CmdMoveStep, false),
		ir.MotorWait{Motor: "needle_s_y", Timeout: 100},
	}}
	warns := Lint(unjoined, devices.Builtin())
	require.Len(t, warns, 1)
	assert.Equal(t, WarnUnjoinedMotion, warns[0].Code)
	assert.Equal(t, "steps[0]", warns[0].Field)

	joined := &ir.Process{Steps: ir.StepList{
		ir.Loop{Count: 2, Steps: ir.StepList{
			ir.NewAsyncMotor("needle_s_x", ir.CmdMoveStep, false),
			ir.ValveControl{Device: "SV1", Action: ir.ActionOpen},
		}},
		ir.MotorWait{Motor: "NEEDLE_S_X", Timeout: 100},
	}}
	assert.Empty(t, Lint(joined, devices.Builtin()))
}

func TestLintComposite(t *testing.T) {
	p := &ir.Process{Steps: ir.StepList{
		ir.CompositeAction{Description: "needle down/up 2000 pulses, repeat 3 times"},
		ir.CompositeAction{Description: "stir gently"},
	}}

	warns := Lint(p, nil)
	require.Len(t, warns, 2)
	assert.Equal(t, WarnInferredWash, warns[0].Code)
	assert.Contains(t, warns[0].Message, "2000 pulses x3")
	assert.Equal(t, WarnCompositeTODO, warns[1].Code)
}

func TestLintNil(t *testing.T) {
	assert.Nil(t, Lint(nil, nil))
}
