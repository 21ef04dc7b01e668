package ir

import (
	"regexp"
	"strconv"
	"strings"
)

// Needle wash grammar for free-text composite actions.
//
// A description is a needle wash when it names the needle, a down/up (or
// up/down) motion and pulses, e.g. "needle down/up 2000 pulses, repeat 3
// times". Documents from the original tool use the Chinese phrasing
// "针下、上2000脉冲，重复3次", which is accepted as well.
var (
	washNeedle  = regexp.MustCompile(`(?i)\bneedle\b`)
	washMotion  = regexp.MustCompile(`(?i)\b(down\s*(/|-|,|and|&)\s*up|up\s*(/|-|,|and|&)\s*down)\b`)
	washPulse   = regexp.MustCompile(`(?i)\bpulses?\b`)
	washPulses  = regexp.MustCompile(`(?i)(\d+)\s*pulses?\b`)
	washRepeats = regexp.MustCompile(`(?i)\brepeat(?:ed)?\s+(\d+)|\b(\d+)\s*times\b|\bx\s*(\d+)\b`)

	legacyPulses  = regexp.MustCompile(`(\d+)脉冲`)
	legacyRepeats = regexp.MustCompile(`重复(\d+)次`)
)

const (
	legacyMotion = "针下、上"
	legacyPulse  = "脉冲"
)

// ParseNeedleWash recognizes a needle wash in free text. Missing pulse and
// repeat counts default to DefaultWashPulses and DefaultWashRepeats.
func ParseNeedleWash(text string) (NeedleWash, bool) {
	wash := NeedleWash{Pulses: DefaultWashPulses, Repeats: DefaultWashRepeats}

	switch {
	case strings.Contains(text, legacyMotion) && strings.Contains(text, legacyPulse):
		if n, ok := firstInt(legacyPulses.FindStringSubmatch(text)); ok {
			wash.Pulses = n
		}
		if n, ok := firstInt(legacyRepeats.FindStringSubmatch(text)); ok {
			wash.Repeats = int(n)
		}
		return wash, true

	case washNeedle.MatchString(text) && washMotion.MatchString(text) && washPulse.MatchString(text):
		if n, ok := firstInt(washPulses.FindStringSubmatch(text)); ok {
			wash.Pulses = n
		}
		if n, ok := firstInt(washRepeats.FindStringSubmatch(text)); ok {
			wash.Repeats = int(n)
		}
		return wash, true
	}

	return NeedleWash{}, false
}

// firstInt returns the first non-empty capture group as an integer.
func firstInt(match []string) (int64, bool) {
	if match == nil {
		return 0, false
	}
	for _, g := range match[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
