package curate

import (
	"unicode/utf8"

	"github.com/poiesic/datamill/core"
)

// DefaultNoiseMaxRepeat is the run threshold used when a config enables
// noise filtering without naming one.
const DefaultNoiseMaxRepeat = 10

// FilterByMinLength drops samples whose input or output has fewer than
// minLength characters. Length counts Unicode code points. A non-positive
// minLength returns samples unchanged.
func FilterByMinLength(samples []core.Sample, minLength int) []core.Sample {
	if minLength <= 0 {
		return samples
	}
	out := make([]core.Sample, 0, len(samples))
	for _, s := range samples {
		if utf8.RuneCountInString(s.Input) < minLength || utf8.RuneCountInString(s.Output) < minLength {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterNoise drops samples whose input or output contains a character
// repeated more than maxRepeat times in a row.
func FilterNoise(samples []core.Sample, maxRepeat int) []core.Sample {
	out := make([]core.Sample, 0, len(samples))
	for _, s := range samples {
		if HasExcessiveRepeat(s.Input, maxRepeat) || HasExcessiveRepeat(s.Output, maxRepeat) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// HasExcessiveRepeat reports whether text holds a run of one character longer
// than maxRepeat. Newlines never count toward a run. A maxRepeat below 1
// disables detection.
func HasExcessiveRepeat(text string, maxRepeat int) bool {
	if text == "" || maxRepeat < 1 {
		return false
	}
	var prev rune = -1
	run := 0
	for _, r := range text {
		if r == '\n' {
			prev, run = -1, 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > maxRepeat {
			return true
		}
	}
	return false
}
