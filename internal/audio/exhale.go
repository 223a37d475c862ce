package audio

// EncodeArgs builds the exhale command line. exhale only accepts
// positional arguments, the preset has to come first.
func EncodeArgs(preset Preset, input, output string) []string {
	return []string{
		string(preset),
		input,
		output,
	}
}
