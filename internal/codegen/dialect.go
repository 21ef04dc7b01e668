package codegen

import "github.com/roach88/liqgen/internal/ir"

// motorCall carries the resolved operands of one motor statement.
type motorCall struct {
	cToken    string // C motor token
	luaHandle string // Lua motor handle
	command   ir.MotorCommand
	params    [3]ir.Arg
	fault     string // fault module for C DEAL calls
}

// dialect writes the statements of one target language. Every method
// appends to b at the given depth; structure (step order, step comments,
// blank lines between top-level steps) belongs to the renderer.
type dialect interface {
	// header writes everything up to and including the start log line.
	header(b *block, h headerInfo)
	// footer writes the end log line and closes the function.
	footer(b *block, h headerInfo)

	// comment returns text as a single line comment.
	comment(text string) string
	// blockComment writes possibly multi-line text as a comment.
	blockComment(b *block, depth int, lines []string)

	deviceSet(b *block, depth int, token string, on bool)
	sleep(b *block, depth int, millis int64)

	motorSync(b *block, depth int, m motorCall, timeout int64)
	motorAsync(b *block, depth int, m motorCall)
	// motorWait joins motion. A zero timeout means the controller default.
	motorWait(b *block, depth int, m motorCall, timeout int64)
	waitReminder(b *block, depth int, motor string)

	loopOpen(b *block, depth int, variable string, count int)
	loopClose(b *block, depth int)

	// washMove issues one needle wash stroke of pulses steps.
	washMove(b *block, depth int, m motorCall, pulses ir.Arg)

	todo(b *block, depth int)
}

// headerInfo is what header and footer need to know about the process.
type headerInfo struct {
	name        string   // display name, never empty
	function    string   // sanitized function name
	description []string // comment lines, never empty
	loopVars    []string // C loop variables to declare, never empty
	generated   string   // generation timestamp
}
