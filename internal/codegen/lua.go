package codegen

import (
	"github.com/roach88/liqgen/internal/devices"
	"github.com/roach88/liqgen/internal/ir"
)

type luaDialect struct{}

func (l luaDialect) header(b *block, h headerInfo) {
	l.blockComment(b, 0, h.description)
	b.add(0, l.comment("generated: "+h.generated))
	b.blank()
	b.addf(0, "function %s()", h.function)
	b.addf(1, `log.info(string.format("liquid_circuit: %%s start", "%s"))`, luaString(h.name))
	b.blank()
}

func (l luaDialect) footer(b *block, h headerInfo) {
	b.addf(1, `log.info(string.format("liquid_circuit: %%s end", "%s"))`, luaString(h.name))
	b.add(0, "end")
	b.blank()
	b.add(0, l.comment("usage:"))
	b.add(0, l.comment(h.function+"()"))
}

func (luaDialect) comment(text string) string {
	return "-- " + text
}

func (l luaDialect) blockComment(b *block, depth int, lines []string) {
	for _, line := range lines {
		if line == "" {
			b.add(depth, "--")
			continue
		}
		b.add(depth, l.comment(line))
	}
}

func (luaDialect) deviceSet(b *block, depth int, handle string, on bool) {
	b.addf(depth, "%s:set(%t)", handle, on)
}

func (luaDialect) sleep(b *block, depth int, millis int64) {
	b.addf(depth, "time.sleep(%d)  -- %dms", millis, millis)
}

func (luaDialect) fail(b *block, depth int, msg, reason string) {
	b.addf(depth+1, `log.error("liquid_circuit: %s")`, msg)
	b.addf(depth+1, `error("%s")`, reason)
	b.add(depth, "end")
}

func (l luaDialect) motorSync(b *block, depth int, m motorCall, timeout int64) {
	b.addf(depth, "if not %s:%s_sync(%s, %s, %s, %d) then",
		m.luaHandle, devices.LuaMethod(m.command), m.params[0], m.params[1], m.params[2], timeout)
	l.fail(b, depth, "motor sync operation failed", "motor operation failed")
}

func (l luaDialect) motorAsync(b *block, depth int, m motorCall) {
	b.addf(depth, "if not %s:%s_async(%s, %s, %s) then",
		m.luaHandle, devices.LuaMethod(m.command), m.params[0], m.params[1], m.params[2])
	l.fail(b, depth, "motor async operation failed", "motor operation failed")
}

func (l luaDialect) motorWait(b *block, depth int, m motorCall, timeout int64) {
	if timeout <= 0 {
		timeout = ir.DefaultTimeoutMillis
	}
	b.addf(depth, "if not %s:wait_complete(%d) then", m.luaHandle, timeout)
	l.fail(b, depth, "motor wait timeout!", "motor wait timeout")
}

func (l luaDialect) waitReminder(b *block, depth int, motor string) {
	b.add(depth, l.comment("NOTE: "+motor+" runs asynchronously, add a motor wait step before depending on it"))
}

func (luaDialect) loopOpen(b *block, depth int, variable string, count int) {
	b.addf(depth, "for %s = 1, %d do", variable, count)
}

func (luaDialect) loopClose(b *block, depth int) {
	b.add(depth, "end")
}

func (luaDialect) washMove(b *block, depth int, m motorCall, pulses ir.Arg) {
	b.addf(depth, "%s:%s_async(%s, %s, %s)",
		m.luaHandle, devices.LuaMethod(ir.CmdMoveStep), pulses, ir.DefaultParam2, ir.DefaultParam3)
}

func (l luaDialect) todo(b *block, depth int) {
	b.add(depth, l.comment("TODO: implement composite action"))
}
