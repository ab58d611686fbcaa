package curate

import (
	"github.com/poiesic/datamill/config"
	"github.com/poiesic/datamill/core"
)

// Config keys recognized by OptionsFromMap.
const (
	KeyMinLength        = "min_length"
	KeyRemoveDuplicates = "remove_duplicates"
	KeyFilterNoise      = "filter_noise"
	KeyNoiseMaxRepeat   = "noise_max_repeat"
)

// Options selects the stages CleanAndFilter runs.
type Options struct {
	// MinLength enables the length filter when non-nil.
	MinLength *int

	RemoveDuplicates bool
	FilterNoise      bool

	// NoiseMaxRepeat applies when FilterNoise is set. Zero means
	// DefaultNoiseMaxRepeat; use a negative value to disable detection
	// while keeping the stage.
	NoiseMaxRepeat int
}

// OptionsFromMap reads the filter keys out of a config mapping. Absent keys
// leave their stage disabled; values of the wrong type are rejected with
// core.ErrValidation.
func OptionsFromMap(m map[string]any) (Options, error) {
	doc := config.Document(m)
	var opts Options

	if doc.Has(KeyMinLength) {
		n, err := doc.Int(KeyMinLength)
		if err != nil {
			return Options{}, err
		}
		opts.MinLength = &n
	}

	var err error
	if opts.RemoveDuplicates, err = doc.BoolOr(KeyRemoveDuplicates, false); err != nil {
		return Options{}, err
	}
	if opts.FilterNoise, err = doc.BoolOr(KeyFilterNoise, false); err != nil {
		return Options{}, err
	}
	if opts.FilterNoise {
		if opts.NoiseMaxRepeat, err = doc.IntOr(KeyNoiseMaxRepeat, DefaultNoiseMaxRepeat); err != nil {
			return Options{}, err
		}
		if opts.NoiseMaxRepeat == 0 {
			// An explicit zero disables detection, as any value below 1 does.
			opts.NoiseMaxRepeat = -1
		}
	}
	return opts, nil
}

// CleanAndFilter removes empty samples, then applies the stages enabled in
// opts in a fixed order: duplicates, minimum length, noise. Disabled stages
// do not run.
func CleanAndFilter(samples []core.Sample, opts Options) []core.Sample {
	out := RemoveEmpty(samples)
	if opts.RemoveDuplicates {
		out = RemoveDuplicates(out)
	}
	if opts.MinLength != nil {
		out = FilterByMinLength(out, *opts.MinLength)
	}
	if opts.FilterNoise {
		maxRepeat := opts.NoiseMaxRepeat
		if maxRepeat == 0 {
			maxRepeat = DefaultNoiseMaxRepeat
		}
		out = FilterNoise(out, maxRepeat)
	}
	return out
}
