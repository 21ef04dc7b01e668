package ir

import (
	"encoding/json"
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genDevice generates identifiers drawn from the shapes used in practice.
func genDevice() gopter.Gen {
	return gen.OneConstOf("SV1", "SV12", "Q1", "F4", "needle_s_z", "needle_r2_y", "custom")
}

func genArg() gopter.Gen {
	return gen.OneGenOf(
		gen.Int64Range(-100000, 100000).Map(func(n int64) Arg { return Arg(strconv.FormatInt(n, 10)) }),
		gen.OneConstOf(Arg("NEEDLE_S_Z_REMOVE_SPEED"), Arg("NEEDLE_S_Z_REMOVE_ACC")),
	)
}

func genMode() gopter.Gen {
	return gen.OneGenOf(
		gen.Int64Range(1, 600000).Map(func(n int64) MotorMode { return SyncMode{Timeout: n} }),
		gen.Bool().Map(func(b bool) MotorMode { return AsyncMode{WaitComplete: b} }),
	)
}

// genLeafStep generates every step kind that may appear inside a loop.
func genLeafStep() gopter.Gen {
	return gen.OneGenOf(
		gopter.CombineGens(genDevice(), gen.OneConstOf(ActionOpen, ActionClose)).
			Map(func(v []any) Step { return ValveControl{Device: v[0].(string), Action: v[1].(Action)} }),
		gopter.CombineGens(genDevice(), gen.OneConstOf(ActionOpen, ActionClose)).
			Map(func(v []any) Step { return PumpControl{Device: v[0].(string), Action: v[1].(Action)} }),
		gopter.CombineGens(gen.Int64Range(1, 100000), gen.OneConstOf(UnitMillis, UnitSeconds)).
			Map(func(v []any) Step { return Delay{Amount: v[0].(int64), Unit: v[1].(DelayUnit)} }),
		gopter.CombineGens(
			genDevice(),
			gen.OneConstOf(CmdReset, CmdMoveStep, CmdMoveSpeed, CmdStop),
			genMode(), genArg(), genArg(), genArg(),
		).Map(func(v []any) Step {
			return MotorControl{
				Motor:   v[0].(string),
				Command: v[1].(MotorCommand),
				Mode:    v[2].(MotorMode),
				Param1:  v[3].(Arg),
				Param2:  v[4].(Arg),
				Param3:  v[5].(Arg),
			}
		}),
		gopter.CombineGens(genDevice(), gen.Int64Range(1, 600000)).
			Map(func(v []any) Step { return MotorWait{Motor: v[0].(string), Timeout: v[1].(int64)} }),
	)
}

func genTopStep() gopter.Gen {
	return gen.OneGenOf(
		genLeafStep(),
		gopter.CombineGens(gen.IntRange(1, 50), gen.SliceOfN(3, genLeafStep())).
			Map(func(v []any) Step {
				children := v[1].([]Step)
				return Loop{Count: v[0].(int), Steps: StepList(children)}
			}),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }).
			Map(func(s string) Step { return CompositeAction{Description: s} }),
		gopter.CombineGens(gen.Int64Range(1, 10000), gen.IntRange(1, 20)).
			Map(func(v []any) Step { return NeedleWash{Pulses: v[0].(int64), Repeats: v[1].(int)} }),
	)
}

func TestStepListRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("encode then decode reproduces the step list", prop.ForAll(
		func(steps []Step) bool {
			original := StepList(steps)
			data, err := json.Marshal(original)
			if err != nil {
				return false
			}
			var decoded StepList
			if err := json.Unmarshal(data, &decoded); err != nil {
				return false
			}
			return reflect.DeepEqual(original, decoded)
		},
		gen.SliceOfN(8, genTopStep()).SuchThat(func(s []Step) bool { return len(s) > 0 }),
	))

	properties.Property("process hash is stable across a round trip", prop.ForAll(
		func(steps []Step) bool {
			p := &Process{Name: "prop", Steps: StepList(steps)}
			data, err := json.Marshal(p)
			if err != nil {
				return false
			}
			var decoded Process
			if err := json.Unmarshal(data, &decoded); err != nil {
				return false
			}
			return MustProcessHash(p) == MustProcessHash(&decoded)
		},
		gen.SliceOfN(5, genTopStep()),
	))

	properties.TestingRun(t)
}
