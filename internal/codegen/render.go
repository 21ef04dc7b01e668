package codegen

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/roach88/liqgen/internal/devices"
	"github.com/roach88/liqgen/internal/ir"
)

// washSettleMillis is the pause after each needle wash stroke.
const washSettleMillis = 500

// Renderer renders processes in one format.
type Renderer struct {
	format  Format
	dialect dialect
	opts    options
}

// NewRenderer returns a Renderer for format.
func NewRenderer(format Format, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{format: format, opts: o}
	switch format {
	case FormatC:
		r.dialect = cDialect{fault: o.fault}
	case FormatLua:
		r.dialect = luaDialect{}
	default:
		return nil, fmt.Errorf("invalid language %q: must be one of %v", format, ValidFormats)
	}
	return r, nil
}

// Format returns the renderer's target format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render returns the full source text for p. It never fails; callers that
// need validation use Generate.
func (r *Renderer) Render(p *ir.Process) string {
	h := r.headerInfo(p)

	var b block
	r.dialect.header(&b, h)
	for i, s := range p.Steps {
		r.step(&b, 1, i+1, s)
		b.blank()
	}
	r.dialect.footer(&b, h)

	out := b.String(r.opts.indent)
	r.opts.logger.Debug("rendered process",
		zap.String("name", h.name),
		zap.String("format", string(r.format)),
		zap.Int("steps", len(p.Steps)),
		zap.Int("lines", len(b.lines)),
	)
	return out
}

// RenderStep returns the block for a single top-level step, numbered index,
// as it appears inside the generated function body.
func (r *Renderer) RenderStep(s ir.Step, index int) string {
	var b block
	r.step(&b, 1, index, s)
	return b.String(r.opts.indent)
}

func (r *Renderer) headerInfo(p *ir.Process) headerInfo {
	name := DisplayName(p.Name)
	desc := p.Description
	if desc == "" {
		desc = name
	}

	depth := loopDepth(p.Steps)
	if depth == 0 {
		depth = 1
	}
	vars := make([]string, depth)
	for i := range vars {
		vars[i] = loopVariable(i)
	}

	return headerInfo{
		name:        name,
		function:    FunctionName(p.Name),
		description: commentLines(desc),
		loopVars:    vars,
		generated:   r.opts.clock().Format("2006-01-02 15:04:05"),
	}
}

// loopDepth is the deepest loop nesting the rendered code needs, counting
// the loop each needle wash expands to.
func loopDepth(steps ir.StepList) int {
	deepest := 0
	ir.Walk(steps, func(s ir.Step, depth int) bool {
		if needsLoop(s) && depth+1 > deepest {
			deepest = depth + 1
		}
		return true
	})
	return deepest
}

func needsLoop(s ir.Step) bool {
	switch v := s.(type) {
	case ir.Loop, ir.NeedleWash:
		return true
	case ir.CompositeAction:
		_, ok := ir.ParseNeedleWash(v.Description)
		return ok
	}
	return false
}

// step writes the comment line and code for s at depth. depth 1 is the
// function body; each loop adds one level.
func (r *Renderer) step(b *block, depth, index int, s ir.Step) {
	d := r.dialect
	b.add(depth, d.comment(fmt.Sprintf("Step %d: %s", index, describe(s))))

	switch v := s.(type) {
	case ir.ValveControl:
		d.deviceSet(b, depth, r.deviceToken(v.Device), v.Action == ir.ActionOpen)
	case ir.PumpControl:
		d.deviceSet(b, depth, r.deviceToken(v.Device), v.Action == ir.ActionOpen)
	case ir.Delay:
		d.sleep(b, depth, v.Millis())
	case ir.MotorControl:
		r.motor(b, depth, v)
	case ir.MotorWait:
		d.motorWait(b, depth, r.motorCall(v.Motor, ir.CmdReset, [3]ir.Arg{}), v.Timeout)
	case ir.Loop:
		r.loop(b, depth, v)
	case ir.CompositeAction:
		r.composite(b, depth, v)
	case ir.NeedleWash:
		r.wash(b, depth, v)
	default:
		panic(fmt.Sprintf("codegen: unhandled step type %T", s))
	}
}

func describe(s ir.Step) string {
	if s == nil {
		return "unknown step"
	}
	return ir.Describe(s)
}

func (r *Renderer) deviceToken(name string) string {
	if r.format == FormatLua {
		return r.opts.registry.LuaHandle(name)
	}
	return r.opts.registry.CToken(name)
}

func (r *Renderer) motorCall(motor string, cmd ir.MotorCommand, params [3]ir.Arg) motorCall {
	module := r.opts.registry.FaultModule(motor)
	if module == "" {
		module = r.opts.fault.Module
	}
	return motorCall{
		cToken:    r.opts.registry.CToken(motor),
		luaHandle: r.opts.registry.LuaHandle(motor),
		command:   cmd,
		params:    params,
		fault:     module,
	}
}

func (r *Renderer) motor(b *block, depth int, m ir.MotorControl) {
	call := r.motorCall(m.Motor, m.Command, [3]ir.Arg{
		argOr(m.Param1, ir.DefaultParam1),
		argOr(m.Param2, ir.DefaultParam2),
		argOr(m.Param3, ir.DefaultParam3),
	})

	var mode ir.MotorMode = ir.AsyncMode{WaitComplete: ir.DefaultWaitComplete}
	if m.Mode != nil {
		mode = m.Mode
	}

	switch mode := mode.(type) {
	case ir.SyncMode:
		r.dialect.motorSync(b, depth, call, mode.Timeout)
	case ir.AsyncMode:
		r.dialect.motorAsync(b, depth, call)
		if mode.WaitComplete {
			r.dialect.motorWait(b, depth, call, 0)
		} else {
			r.dialect.waitReminder(b, depth, m.Motor)
		}
	}
}

func argOr(a, def ir.Arg) ir.Arg {
	if a == "" {
		return def
	}
	return a
}

func (r *Renderer) loop(b *block, depth int, l ir.Loop) {
	d := r.dialect
	d.loopOpen(b, depth, loopVariable(depth-1), l.Count)
	b.add(depth+1, d.comment(fmt.Sprintf("repeat %d %s, %d %s per pass",
		l.Count, plural(l.Count, "time", "times"), len(l.Steps), plural(len(l.Steps), "step", "steps"))))
	for i, s := range l.Steps {
		r.step(b, depth+1, i+1, s)
	}
	d.loopClose(b, depth)
}

func (r *Renderer) composite(b *block, depth int, c ir.CompositeAction) {
	lines := commentLines(c.Description)
	lines[0] = "composite: " + lines[0]
	r.dialect.blockComment(b, depth, lines)

	if w, ok := ir.ParseNeedleWash(c.Description); ok {
		r.wash(b, depth, w)
		return
	}
	r.dialect.todo(b, depth)
}

// wash writes the down/up stroke loop of a needle wash on the wash axis.
func (r *Renderer) wash(b *block, depth int, w ir.NeedleWash) {
	d := r.dialect
	call := r.motorCall(devices.WashAxis, ir.CmdMoveStep, [3]ir.Arg{})
	pulses := ir.Arg(strconv.FormatInt(w.Pulses, 10))

	d.loopOpen(b, depth, loopVariable(depth-1), w.Repeats)
	for _, p := range []ir.Arg{pulses, pulses.Negate()} {
		d.washMove(b, depth+1, call, p)
		d.sleep(b, depth+1, washSettleMillis)
		d.motorWait(b, depth+1, call, 0)
	}
	d.loopClose(b, depth)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
