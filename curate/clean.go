package curate

import (
	"strings"

	"github.com/poiesic/datamill/core"
)

// RemoveEmpty drops samples whose input or output is blank after trimming
// whitespace.
func RemoveEmpty(samples []core.Sample) []core.Sample {
	out := make([]core.Sample, 0, len(samples))
	for _, s := range samples {
		if strings.TrimSpace(s.Input) == "" || strings.TrimSpace(s.Output) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

type pair struct {
	input, output string
}

// RemoveDuplicates keeps the first sample for each exact (input, output) pair.
func RemoveDuplicates(samples []core.Sample) []core.Sample {
	seen := make(map[pair]struct{}, len(samples))
	out := make([]core.Sample, 0, len(samples))
	for _, s := range samples {
		key := pair{s.Input, s.Output}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
