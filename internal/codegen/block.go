package codegen

import (
	"fmt"
	"strings"
)

// line is one output line at an indentation depth. Empty text is a blank line.
type line struct {
	depth int
	text  string
}

// block accumulates output lines. Indentation is structural: callers pass
// a depth and the block applies the indent when it is written out.
type block struct {
	lines []line
}

func (b *block) add(depth int, text string) {
	b.lines = append(b.lines, line{depth: depth, text: text})
}

func (b *block) addf(depth int, format string, args ...any) {
	b.add(depth, fmt.Sprintf(format, args...))
}

func (b *block) blank() {
	b.lines = append(b.lines, line{})
}

// String renders the block. Blank lines carry no trailing whitespace.
func (b *block) String(indent string) string {
	var sb strings.Builder
	for _, l := range b.lines {
		if l.text != "" {
			sb.WriteString(strings.Repeat(indent, l.depth))
			sb.WriteString(l.text)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
