package ir

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepListRoundTrip(t *testing.T) {
	original := StepList{
		ValveControl{Device: "SV1", Action: ActionOpen},
		PumpControl{Device: "Q2", Action: ActionClose},
		Delay{Amount: 2, Unit: UnitSeconds},
		NewSyncMotor("needle_s_z", CmdMoveStep, 15000).WithParams("1800", "20000", "50000"),
		NewAsyncMotor("needle_s_y", CmdReset, false),
		MotorWait{Motor: "needle_s_y", Timeout: 30000},
		Loop{Count: 3, Steps: StepList{
			Delay{Amount: 100, Unit: UnitMillis},
			ValveControl{Device: "SV2", Action: ActionClose},
		}},
		CompositeAction{Description: "rinse the cuvette"},
		NeedleWash{Pulses: 2000, Repeats: 3},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded StepList
	require.NoError(t, json.Unmarshal(data, &decoded))

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStepListMarshalShape(t *testing.T) {
	data, err := json.Marshal(StepList{
		NewSyncMotor("needle_s_z", CmdStop, 5000),
		NewAsyncMotor("needle_s_x", CmdMoveSpeed, false),
	})
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)

	assert.Equal(t, "sync", raw[0]["mode"])
	assert.EqualValues(t, 5000, raw[0]["timeout"])
	assert.NotContains(t, raw[0], "wait_complete")

	assert.Equal(t, "async", raw[1]["mode"])
	assert.Equal(t, false, raw[1]["wait_complete"])
	assert.NotContains(t, raw[1], "timeout")
}

func TestStepListMarshalEmpty(t *testing.T) {
	data, err := json.Marshal(StepList(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestDecodeDefaults(t *testing.T) {
	var steps StepList
	err := json.Unmarshal([]byte(`[
		{"type": "valve", "device": "SV3"},
		{"type": "delay", "amount": 50},
		{"type": "motor", "motor": "needle_s_z"},
		{"type": "motor", "motor": "needle_s_z", "mode": "sync"},
		{"type": "motor_wait", "motor": "needle_s_z"},
		{"type": "loop", "steps": [{"type": "delay", "amount": 1}]},
		{"type": "needle_wash"}
	]`), &steps)
	require.NoError(t, err)
	require.Len(t, steps, 7)

	assert.Equal(t, ValveControl{Device: "SV3", Action: ActionOpen}, steps[0])
	assert.Equal(t, Delay{Amount: 50, Unit: UnitMillis}, steps[1])
	assert.Equal(t, MotorControl{
		Motor: "needle_s_z", Command: CmdReset, Mode: AsyncMode{WaitComplete: true},
		Param1: "0", Param2: "20000", Param3: "50000",
	}, steps[2])
	assert.Equal(t, SyncMode{Timeout: 20000}, steps[3].(MotorControl).Mode)
	assert.Equal(t, MotorWait{Motor: "needle_s_z", Timeout: 20000}, steps[4])
	assert.Equal(t, 1, steps[5].(Loop).Count)
	assert.Equal(t, NeedleWash{Pulses: 1800, Repeats: 1}, steps[6])
}

func TestDecodeStringNumbers(t *testing.T) {
	var steps StepList
	err := json.Unmarshal([]byte(`[
		{"type": "delay", "time": "3", "unit": "s"},
		{"type": "motor", "motor": "m", "mode": "sync", "param1": 1800, "timeout": "9000"},
		{"type": "motor", "motor": "m", "mode": "async", "wait_complete": "false"},
		{"type": "loop", "count": "4", "steps": [{"type": "delay", "amount": "10"}]}
	]`), &steps)
	require.NoError(t, err)

	assert.Equal(t, Delay{Amount: 3, Unit: UnitSeconds}, steps[0])
	m := steps[1].(MotorControl)
	assert.Equal(t, Arg("1800"), m.Param1)
	assert.Equal(t, SyncMode{Timeout: 9000}, m.Mode)
	assert.Equal(t, AsyncMode{WaitComplete: false}, steps[2].(MotorControl).Mode)
	assert.Equal(t, 4, steps[3].(Loop).Count)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
		wantMsg  string
	}{
		{
			name:     "unknown kind",
			input:    `[{"type": "teleport"}]`,
			wantPath: "steps[0]",
			wantMsg:  `unknown step type "teleport"`,
		},
		{
			name:     "missing kind",
			input:    `[{"device": "SV1"}]`,
			wantPath: "steps[0]",
			wantMsg:  "missing step type",
		},
		{
			name:     "timeout in async mode",
			input:    `[{"type": "motor", "motor": "m", "mode": "async", "timeout": 100}]`,
			wantPath: "steps[0]",
			wantMsg:  "timeout is only allowed in sync mode",
		},
		{
			name:     "wait_complete in sync mode",
			input:    `[{"type": "motor", "motor": "m", "mode": "sync", "wait_complete": true}]`,
			wantPath: "steps[0]",
			wantMsg:  "wait_complete is only allowed in async mode",
		},
		{
			name:     "unknown mode",
			input:    `[{"type": "motor", "motor": "m", "mode": "later"}]`,
			wantPath: "steps[0]",
			wantMsg:  `unknown motor mode "later"`,
		},
		{
			name:     "nested unknown kind",
			input:    `[{"type": "delay", "amount": 1}, {"type": "loop", "count": 2, "steps": [{"type": "nope"}]}]`,
			wantPath: "steps[1].steps[0]",
			wantMsg:  `unknown step type "nope"`,
		},
		{
			name:     "float amount",
			input:    `[{"type": "delay", "amount": 1.5}]`,
			wantPath: "steps[0]",
		},
		{
			name:     "unknown field",
			input:    `[{"type": "valve", "device": "SV1", "colour": "red"}]`,
			wantPath: "steps[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var steps StepList
			err := json.Unmarshal([]byte(tt.input), &steps)
			require.Error(t, err)

			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr), "want DecodeError, got %T: %v", err, err)
			assert.Equal(t, tt.wantPath, decErr.Path)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decErr.Message)
			}
		})
	}
}

func TestProcessRoundTrip(t *testing.T) {
	p := Process{
		Name:        "Flush A",
		Description: "flush line A",
		Steps:       StepList{ValveControl{Device: "SV1", Action: ActionOpen}},
		CreatedTime: "2026-10-19T08:00:00Z",
		Version:     DocumentVersion,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got Process
	require.NoError(t, json.Unmarshal(data, &got))
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("process mismatch (-want +got):\n%s", diff)
	}
}

func TestArgValid(t *testing.T) {
	assert.True(t, Arg("0").Valid())
	assert.True(t, Arg("-1800").Valid())
	assert.True(t, Arg("NEEDLE_S_Z_REMOVE_SPEED").Valid())
	assert.False(t, Arg("").Valid())
	assert.False(t, Arg("1.5").Valid())
	assert.False(t, Arg("a b").Valid())
	assert.False(t, Arg("9abc").Valid())

	assert.True(t, Arg("12").IsInt())
	assert.False(t, Arg("SPEED").IsInt())

	assert.Equal(t, Arg("-1800"), Arg("1800").Negate())
	assert.Equal(t, Arg("1800"), Arg("-1800").Negate())
	assert.Equal(t, Arg("-STEPS"), Arg("STEPS").Negate())
}

func TestDelayMillis(t *testing.T) {
	assert.Equal(t, int64(100), Delay{Amount: 100, Unit: UnitMillis}.Millis())
	assert.Equal(t, int64(3000), Delay{Amount: 3, Unit: UnitSeconds}.Millis())
}

func TestWalk(t *testing.T) {
	steps := StepList{
		Delay{Amount: 1, Unit: UnitMillis},
		Loop{Count: 2, Steps: StepList{
			ValveControl{Device: "SV1", Action: ActionOpen},
			MotorWait{Motor: "m", Timeout: 1},
		}},
		NeedleWash{Pulses: 1, Repeats: 1},
	}

	var kinds []StepKind
	var depths []int
	Walk(steps, func(s Step, depth int) bool {
		kinds = append(kinds, s.Kind())
		depths = append(depths, depth)
		return true
	})

	assert.Equal(t, []StepKind{KindDelay, KindLoop, KindValve, KindMotorWait, KindNeedleWash}, kinds)
	assert.Equal(t, []int{0, 0, 1, 1, 0}, depths)

	count := 0
	Walk(steps, func(Step, int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}
