package codegen

import (
	"strconv"
	"strings"
)

// DefaultProcessName is used when a process has no name.
const DefaultProcessName = "custom_process"

var reservedWords = map[string]bool{
	// C
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "int": true, "long": true, "register": true, "return": true,
	"short": true, "signed": true, "sizeof": true, "static": true, "struct": true,
	"switch": true, "typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true,
	// Lua
	"and": true, "elseif": true, "end": true, "false": true, "function": true,
	"in": true, "local": true, "nil": true, "not": true, "or": true,
	"repeat": true, "then": true, "true": true, "until": true,
}

// DisplayName returns the process name used in log lines.
func DisplayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultProcessName
	}
	return name
}

// FunctionName derives the generated function name from a process name:
// lower-cased, spaces and hyphens become underscores, everything but ASCII
// letters, digits and underscores is dropped. A result that is empty,
// starts with a digit or equals a C or Lua keyword gets a "process_" prefix.
// Blank names (only whitespace) are unnamed and use DefaultProcessName.
func FunctionName(name string) string {
	name = DisplayName(name)

	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ' || r == '-':
			sb.WriteByte('_')
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			sb.WriteRune(r)
		}
	}

	fn := sb.String()
	if fn == "" || (fn[0] >= '0' && fn[0] <= '9') || reservedWords[fn] {
		return "process_" + fn
	}
	return fn
}

// loopVariable names the loop counter at a nesting depth: i, j, k, ...
func loopVariable(depth int) string {
	const names = "ijklmn"
	if depth < len(names) {
		return names[depth : depth+1]
	}
	return "i" + strconv.Itoa(depth)
}

// cString escapes s for a C printf format string literal.
func cString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
		"%", "%%",
	)
	return r.Replace(s)
}

// luaString escapes s for a double-quoted Lua string literal.
func luaString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}

// commentLines splits free text into comment lines, dropping leading and
// trailing blank lines. It never returns an empty slice.
func commentLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimRight(l, " \t\r"))
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
