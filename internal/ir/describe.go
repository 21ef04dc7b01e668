package ir

import (
	"fmt"
	"strings"
)

// compositeSummaryRunes is how much of a composite description a summary keeps.
const compositeSummaryRunes = 20

// Describe returns the one-line human-readable summary of a step, as shown
// in step listings and in the comment above each generated block.
func Describe(s Step) string {
	switch v := s.(type) {
	case ValveControl:
		return oneLine(fmt.Sprintf("%s %s", v.Device, v.Action))
	case PumpControl:
		return oneLine(fmt.Sprintf("%s %s", v.Device, v.Action))
	case Delay:
		return fmt.Sprintf("delay %d%s", v.Amount, v.Unit)
	case MotorControl:
		mode := "async"
		if v.Mode != nil {
			mode = v.Mode.ModeName()
		}
		return oneLine(fmt.Sprintf("%s %s (%s)", v.Motor, v.Command, mode))
	case MotorWait:
		return oneLine(fmt.Sprintf("wait for %s", v.Motor))
	case Loop:
		return fmt.Sprintf("loop %d %s (%d %s)",
			v.Count, plural(v.Count, "time", "times"),
			len(v.Steps), plural(len(v.Steps), "step", "steps"))
	case CompositeAction:
		return "composite: " + Summarize(v.Description, compositeSummaryRunes)
	case NeedleWash:
		return fmt.Sprintf("needle wash %d pulses x%d", v.Pulses, v.Repeats)
	default:
		return "unknown step"
	}
}

// Summarize collapses whitespace and truncates text to n runes,
// appending "..." when something was cut.
func Summarize(text string, n int) string {
	text = oneLine(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// oneLine collapses all whitespace runs, including newlines, to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
