// Package convert turns queued audio files into m4a files.
//
// A Queue holds the jobs. A Converter takes the pending jobs of a queue and
// runs up to Config.Parallel of them at once, each through a pipeline of an
// optional transcode to WAV followed by the exhale encode. State changes are
// published on the queue's EventLog for user interfaces to follow.
package convert
