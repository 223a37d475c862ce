package audio

import (
	"fmt"
	"strings"
)

// Category groups encoder failures by what the user can do about them.
type Category int

const (
	Unclassified Category = iota
	SampleRateTooHigh
	InvalidInput
	OutputNotWritable
	UnsupportedChannels
)

func (c Category) String() string {
	switch c {
	case SampleRateTooHigh:
		return "sample rate too high"
	case InvalidInput:
		return "invalid input"
	case OutputNotWritable:
		return "output not writable"
	case UnsupportedChannels:
		return "unsupported channels"
	default:
		return "conversion failed"
	}
}

// Diagnosis is a classified encoder failure.
type Diagnosis struct {
	Category Category
	Message  string
}

type rule struct {
	category Category
	patterns []string
	message  func(preset Preset) string
}

// rules are matched in order, the first hit wins.
var rules = []rule{
	{
		category: SampleRateTooHigh,
		patterns: []string{"input sample rate must be <=32 khz"},
		message: func(preset Preset) string {
			return fmt.Sprintf(`Sample rate too high for preset %s

The audio file has a sample rate higher than 32 kHz (probably 44.1 kHz).
Preset 0 only works with audio of 32 kHz or less.
Use preset 1-9 or a-g, preset 5 gives good quality at normal bitrates.`, preset)
		},
	},
	{
		category: InvalidInput,
		patterns: []string{"could not open input file", "invalid wave file"},
		message: func(Preset) string {
			return `Invalid input file

The WAV file is corrupted or in an unsupported format. Make sure
the file is a valid WAV/WAVE file, is not empty and uses PCM encoding.`
		},
	},
	{
		category: OutputNotWritable,
		patterns: []string{"could not create output file", "permission denied"},
		message: func(Preset) string {
			return `Cannot create output file

Check the write permission of the output folder, that the file is
not open in another application and that there is enough disk space.`
		},
	},
	{
		category: UnsupportedChannels,
		patterns: []string{"unsupported channel configuration"},
		message: func(Preset) string {
			return `Unsupported audio channels

exhale supports mono, stereo and some multichannel layouts.`
		},
	},
}

// Classify maps encoder stderr to a diagnosis. Matching is substring
// containment on the lowercased text. Unmatched stderr is quoted verbatim.
func Classify(stderr string, preset Preset) Diagnosis {
	lower := strings.ToLower(stderr)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(lower, p) {
				return Diagnosis{Category: r.category, Message: r.message(preset)}
			}
		}
	}
	return Diagnosis{
		Category: Unclassified,
		Message: fmt.Sprintf(`Conversion failed

Raw error: %s

Try a different quality preset (1-9 or a-g), make sure the input
is a valid WAV file and check the file permissions.`, stderr),
	}
}
