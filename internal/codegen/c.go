package codegen

import (
	"fmt"
	"strings"

	"github.com/roach88/liqgen/internal/devices"
	"github.com/roach88/liqgen/internal/ir"
)

// Controller constants referenced by generated C.
const (
	cDefaultTimeout = "MOTOR_DEFAULT_TIMEOUT"
	cWashSpeed      = "NEEDLE_S_Z_REMOVE_SPEED"
	cWashAcc        = "NEEDLE_S_Z_REMOVE_ACC"
)

type cDialect struct {
	fault FaultPolicy
}

func (c cDialect) header(b *block, h headerInfo) {
	c.blockComment(b, 0, h.description)
	b.addf(0, "void %s(void)", h.function)
	b.add(0, "{")

	decls := make([]string, len(h.loopVars))
	for i, v := range h.loopVars {
		decls[i] = v + " = 0"
	}
	b.addf(1, "int %s;", strings.Join(decls, ", "))
	b.blank()
	b.add(1, `LOG("%llu", get_time());`)
	b.addf(1, `LOG("liquid_circuit: %s start\n");`, cString(h.name))
	b.blank()
}

func (c cDialect) footer(b *block, h headerInfo) {
	b.addf(1, `LOG("liquid_circuit: %s end\n");`, cString(h.name))
	b.add(0, "}")
}

func (cDialect) comment(text string) string {
	// A trailing backslash would splice the next line into the comment.
	return "// " + strings.TrimRight(text, `\`)
}

func (cDialect) blockComment(b *block, depth int, lines []string) {
	esc := make([]string, len(lines))
	for i, l := range lines {
		esc[i] = strings.ReplaceAll(l, "*/", "* /")
	}
	if len(esc) == 1 {
		b.addf(depth, "/* %s */", esc[0])
		return
	}
	b.addf(depth, "/* %s", esc[0])
	for _, l := range esc[1 : len(esc)-1] {
		b.add(depth, strings.TrimRight(" * "+l, " "))
	}
	b.addf(depth, " * %s */", esc[len(esc)-1])
}

func (cDialect) deviceSet(b *block, depth int, token string, on bool) {
	state := "OFF"
	if on {
		state = "ON"
	}
	b.addf(depth, "valve_set(%s, %s);", token, state)
}

func (cDialect) sleep(b *block, depth int, millis int64) {
	b.addf(depth, "usleep(%d*1000);", millis)
}

func (c cDialect) deal(b *block, depth int, module string) {
	b.addf(depth, "FAULT_CHECK_DEAL(%s, %s, (void *)%s);", c.fault.Group, c.fault.Level, module)
}

func (c cDialect) motorSync(b *block, depth int, m motorCall, timeout int64) {
	b.addf(depth, "if (motor_move_ctl_sync(%s, %s, %s, %s, %s, %d) < 0) {",
		m.cToken, devices.CommandToken(m.command), m.params[0], m.params[1], m.params[2], timeout)
	b.add(depth+1, `LOG("liquid_circuit: motor sync operation failed\n");`)
	c.deal(b, depth+1, m.fault)
	b.add(depth, "}")
}

func (c cDialect) motorAsync(b *block, depth int, m motorCall) {
	b.addf(depth, "FAULT_CHECK_START(%s);", c.fault.Level)
	b.addf(depth, "if (motor_move_ctl_async(%s, %s, %s, %s, %s) < 0) {",
		m.cToken, devices.CommandToken(m.command), m.params[0], m.params[1], m.params[2])
	b.add(depth+1, `LOG("liquid_circuit: motor async operation failed\n");`)
	c.deal(b, depth+1, m.fault)
	b.add(depth, "}")
	b.add(depth, "FAULT_CHECK_END();")
}

func (c cDialect) motorWait(b *block, depth int, m motorCall, timeout int64) {
	t := cDefaultTimeout
	if timeout > 0 {
		t = fmt.Sprint(timeout)
	}
	b.addf(depth, "FAULT_CHECK_START(%s);", c.fault.Level)
	b.addf(depth, "if (motor_timedwait(%s, %s) != 0) {", m.cToken, t)
	b.add(depth+1, `LOG("liquid_circuit: motor wait timeout!\n");`)
	c.deal(b, depth+1, m.fault)
	b.add(depth, "}")
	b.add(depth, "FAULT_CHECK_END();")
}

func (c cDialect) waitReminder(b *block, depth int, motor string) {
	b.add(depth, c.comment("NOTE: "+motor+" runs asynchronously, add a motor wait step before depending on it"))
}

func (cDialect) loopOpen(b *block, depth int, variable string, count int) {
	b.addf(depth, "for (%[1]s = 0; %[1]s < %[2]d; %[1]s++) {", variable, count)
}

func (cDialect) loopClose(b *block, depth int) {
	b.add(depth, "}")
}

func (c cDialect) washMove(b *block, depth int, m motorCall, pulses ir.Arg) {
	b.addf(depth, "if (motor_move_ctl_async(%s, %s, %s, %s, %s) < 0) {",
		m.cToken, devices.CommandToken(ir.CmdMoveStep), pulses, cWashSpeed, cWashAcc)
	c.deal(b, depth+1, m.fault)
	b.add(depth, "}")
}

func (c cDialect) todo(b *block, depth int) {
	b.add(depth, c.comment("TODO: implement composite action"))
}
