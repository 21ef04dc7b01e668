package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/liqgen/internal/ir"
)

func TestCompileProcessBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		process: FlushA: {
			name:        "Flush A"
			description: "flush line A"
			steps: [
				{type: "valve", device: "SV1", action: "open"},
				{type: "delay", amount: 2, unit: "s"},
				{type: "motor", motor: "needle_s_z", command: "move_step", mode: "sync", param1: "1800", timeout: 15000},
				{type: "loop", count: 3, steps: [
					{type: "pump", device: "Q1"},
				]},
				{type: "needle_wash", repeats: 2},
			]
		}
	`)
	require.NoError(t, v.Err())

	p, err := CompileProcess(v.LookupPath(cue.ParsePath("process.FlushA")))
	require.NoError(t, err)

	want := &ir.Process{
		Name:        "Flush A",
		Description: "flush line A",
		Steps: ir.StepList{
			ir.ValveControl{Device: "SV1", Action: ir.ActionOpen},
			ir.Delay{Amount: 2, Unit: ir.UnitSeconds},
			ir.NewSyncMotor("needle_s_z", ir.CmdMoveStep, 15000).WithParams("1800", ir.DefaultParam2, ir.DefaultParam3),
			ir.Loop{Count: 3, Steps: ir.StepList{
				ir.PumpControl{Device: "Q1", Action: ir.ActionOpen},
			}},
			ir.NeedleWash{Pulses: 1800, Repeats: 2},
		},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("CompileProcess mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileProcessNameFromLabel(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		process: Rinse: {
			steps: [{type: "delay", amount: 100}]
		}
	`)
	require.NoError(t, v.Err())

	p, err := CompileProcess(v.LookupPath(cue.ParsePath("process.Rinse")))
	require.NoError(t, err)
	assert.Equal(t, "Rinse", p.Name)
	assert.Equal(t, ir.StepList{ir.Delay{Amount: 100, Unit: ir.UnitMillis}}, p.Steps)
}

func TestCompileProcessNameFromQuotedLabel(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		process: "Flush A": {
			steps: [{type: "valve", device: "SV1"}]
		}
	`)
	require.NoError(t, v.Err())

	p, err := CompileProcess(v.LookupPath(cue.MakePath(cue.Str("process"), cue.Str("Flush A"))))
	require.NoError(t, err)
	assert.Equal(t, "Flush A", p.Name)
}

func TestCompileProcessErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "missing steps",
			source: `process: Bad: { description: "no steps" }`,
			want:   []string{"steps", "required"},
		},
		{
			name:   "unknown field",
			source: `process: Bad: { steps: [], colour: "red" }`,
			want:   []string{"colour", "unknown field"},
		},
		{
			name:   "unknown step type",
			source: `process: Bad: { steps: [{type: "teleport"}] }`,
			want:   []string{"steps[0]", `unknown step type "teleport"`},
		},
		{
			name:   "nested decode error",
			source: `process: Bad: { steps: [{type: "delay", amount: 1}, {type: "loop", steps: [{type: "motor", mode: "sync", wait_complete: true}]}] }`,
			want:   []string{"steps[1].steps[0]", "wait_complete is only allowed in async mode"},
		},
		{
			name:   "steps not a list",
			source: `process: Bad: { steps: "valve" }`,
			want:   []string{"steps must be a list"},
		},
		{
			name:   "incomplete value",
			source: `process: Bad: { steps: [{type: "delay", amount: int}] }`,
			want:   []string{"incomplete"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := cuecontext.New()
			v := ctx.CompileString(tt.source)
			require.NoError(t, v.Err())

			_, err := CompileProcess(v.LookupPath(cue.ParsePath("process.Bad")))
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestLoadProcesses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flush.cue"), []byte(`package processes

process: FlushB: {
	steps: [{type: "valve", device: "SV2", action: "close"}]
}

process: FlushA: {
	steps: [{type: "valve", device: "SV1"}]
}
`), 0644))

	result, errs := LoadProcesses(dir, LoadModeCollectAll)
	require.Empty(t, errs)
	require.Len(t, result.Processes, 2)
	assert.Equal(t, []string{"FlushA", "FlushB"}, result.Labels)
	assert.Equal(t, "FlushA", result.Processes[0].Name)
	assert.Equal(t, 1, result.FileCount)
}

func TestLoadProcessesCollectsCompileErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte(`package processes

process: A: { steps: [{type: "warp"}] }
process: B: { steps: [{type: "delay", amount: 5}] }
process: C: { steps: [{type: "valve", extra: 1}] }
`), 0644))

	result, errs := LoadProcesses(dir, LoadModeCollectAll)
	require.Len(t, errs, 2)
	require.Len(t, result.Processes, 1)
	assert.Equal(t, "B", result.Processes[0].Name)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeCompile, loadErr.Code)
	assert.Contains(t, loadErr.Message, "process.A")

	_, errs = LoadProcesses(dir, LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestLoadProcessesDirectoryErrors(t *testing.T) {
	_, errs := LoadProcesses(filepath.Join(t.TempDir(), "missing"), LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNotFound)

	empty := t.TempDir()
	_, errs = LoadProcesses(empty, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no CUE files found")

	noProcs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(noProcs, "x.cue"), []byte("package x\n\nother: 1\n"), 0644))
	_, errs = LoadProcesses(noProcs, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no processes found")
}

func TestFindCUEFiles(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "sub")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.cue"), []byte("package test"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notcue.txt"), []byte("not a cue file"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "nested.cue"), []byte("package test"), 0644))

	files, err := FindCUEFiles(tmpDir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
