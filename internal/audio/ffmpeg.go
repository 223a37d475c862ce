package audio

// Target format of the transcode stage. exhale expects 16 or 24 bit PCM WAV.
const (
	transcodeSampleRate = "44100"
	transcodeChannels   = "2"
)

// TranscodeArgs converts any input ffmpeg understands to stereo 44.1 kHz WAV.
func TranscodeArgs(input, output string) []string {
	return []string{
		"-i", input,
		"-ar", transcodeSampleRate,
		"-ac", transcodeChannels,
		"-f", "wav",
		"-y",
		output,
	}
}

// MetadataArgs remuxes encoded without re-encoding and takes the
// global metadata (title, artist, ...) from source.
func MetadataArgs(encoded, source, output string) []string {
	return []string{
		"-i", encoded,
		"-i", source,
		"-map", "0",
		"-map_metadata", "1",
		"-c", "copy",
		"-metadata", "encoding_tool=exhalebatch",
		"-f", "ipod",
		"-y",
		output,
	}
}
