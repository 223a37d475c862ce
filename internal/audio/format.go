package audio

import (
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ContainerExt is the extension of every output file.
const ContainerExt = "m4a"

// disambiguation is appended to the file name when the input already is an m4a.
const disambiguation = "-exhale"

// Route is the stage sequence an input needs.
type Route int

const (
	Unsupported Route = iota
	// Direct inputs are linear PCM and go straight to the encoder.
	Direct
	// Transcode inputs are converted to WAV first.
	Transcode
)

func (r Route) String() string {
	switch r {
	case Direct:
		return "direct"
	case Transcode:
		return "transcode"
	default:
		return "unsupported"
	}
}

var routes = map[string]Route{
	"wav":  Direct,
	"wave": Direct,
	"mp3":  Transcode,
	"flac": Transcode,
	"m4a":  Transcode,
	"aac":  Transcode,
	"mp4":  Transcode,
}

// RouteOf classifies path by its extension, case-insensitive.
func RouteOf(path string) Route {
	return routes[ext(path)]
}

// Extensions lists the supported input extensions without dot, sorted.
func Extensions() []string {
	return slices.Sorted(maps.Keys(routes))
}

// Supported reports whether path can be converted.
func Supported(path string) bool {
	return RouteOf(path) != Unsupported
}

// OutputPath returns the m4a destination for input. It never equals input.
func OutputPath(input string) string {
	e := filepath.Ext(input)
	base := strings.TrimSuffix(input, e)
	if ext(input) == ContainerExt {
		return base + disambiguation + "." + ContainerExt
	}
	out := base + "." + ContainerExt
	if samePath(out, input) {
		return base + disambiguation + "." + ContainerExt
	}
	return out
}

// AlternativeOutputPath returns the n-th output path candidate for input.
// n = 0 is OutputPath, then follow <name>-exhale.m4a, <name>-exhale-2.m4a, ...
func AlternativeOutputPath(input string, n int) string {
	if n <= 0 {
		return OutputPath(input)
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	suffix := disambiguation
	if n > 1 {
		suffix += "-" + strconv.Itoa(n)
	}
	return base + suffix + "." + ContainerExt
}

// PathKey folds path so that two paths naming the same file on a
// case-insensitive file system get the same key.
func PathKey(path string) string {
	return strings.ToLower(norm.NFC.String(path))
}

// IntermediatePath returns where the WAV of the transcode stage is written.
// Without tempDir the file is placed next to input.
func IntermediatePath(input, tempDir, id string) string {
	if tempDir == "" {
		return input + ".temp.wav"
	}
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if len(id) > 8 {
		id = id[:8]
	}
	return filepath.Join(tempDir, name+"-"+id+".temp.wav")
}

func ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// samePath compares like the default macOS file system does:
// case-insensitive and independent of the Unicode normalization form.
func samePath(a, b string) bool {
	return PathKey(a) == PathKey(b)
}
