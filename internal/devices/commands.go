package devices

import "github.com/roach88/liqgen/internal/ir"

// commandTokens maps motor commands to controller command macros.
var commandTokens = map[ir.MotorCommand]string{
	ir.CmdReset:     "CMD_MOTOR_RST",
	ir.CmdMoveStep:  "CMD_MOTOR_MOVE_STEP",
	ir.CmdMoveSpeed: "CMD_MOTOR_MOVE_SPEED",
	ir.CmdStop:      "CMD_MOTOR_STOP",
}

// luaMethods maps motor commands to Lua motor method stems.
// The runtime exposes <stem>_sync and <stem>_async.
var luaMethods = map[ir.MotorCommand]string{
	ir.CmdReset:     "reset",
	ir.CmdMoveStep:  "move_step",
	ir.CmdMoveSpeed: "move_speed",
	ir.CmdStop:      "stop",
}

// CommandToken returns the C command macro for cmd.
// Unknown commands map to the reset command.
func CommandToken(cmd ir.MotorCommand) string {
	if tok, ok := commandTokens[cmd]; ok {
		return tok
	}
	return commandTokens[ir.DefaultCommand]
}

// LuaMethod returns the Lua method stem for cmd.
// Unknown commands map to the reset command.
func LuaMethod(cmd ir.MotorCommand) string {
	if m, ok := luaMethods[cmd]; ok {
		return m
	}
	return luaMethods[ir.DefaultCommand]
}
