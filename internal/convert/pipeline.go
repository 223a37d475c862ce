package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrclmr/exhalebatch/internal/audio"
)

// transcodeShare is the part of the job progress covered by the transcode stage.
const transcodeShare = 0.1

// pipeline converts one job. It is shared by all jobs of a batch
// and holds no per-job state.
type pipeline struct {
	cfg     Config
	starter audio.Starter
	clock   Clock
	queue   *Queue
}

func (p *pipeline) run(ctx context.Context, job Job) error {
	encoder, err := p.resolveEncoder()
	if err != nil {
		return err
	}

	route := audio.RouteOf(job.InputPath)
	if route == audio.Unsupported {
		return &Error{
			Kind: KindInput,
			Op:   "validate",
			Msg:  fmt.Sprintf("Unsupported input format: %s", filepath.Base(job.InputPath)),
		}
	}

	var transcoder string
	if route == audio.Transcode {
		transcoder, err = p.resolveTranscoder()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(job.InputPath); err != nil {
		return &Error{
			Kind: KindInput,
			Op:   "validate",
			Msg:  fmt.Sprintf("Input file not found: %s", job.InputPath),
			Err:  err,
		}
	}

	report := func(progress float64) {
		p.queue.setProgress(job.ID, progress)
	}

	encodeInput := job.InputPath
	encodeReport := report
	if route == audio.Transcode {
		wav := audio.IntermediatePath(job.InputPath, p.cfg.TempDir, job.ID)
		defer removeBestEffort(wav, "intermediate file")

		err = p.transcode(ctx, transcoder, job.InputPath, wav)
		if err != nil {
			return err
		}
		report(transcodeShare)
		encodeInput = wav
		encodeReport = scale(transcodeShare, 1, report)
	}

	output := p.queue.claimOutput(job.ID, job.InputPath)

	err = p.encode(ctx, encoder, encodeInput, output, encodeReport)
	if err != nil {
		return err
	}
	report(1)

	p.postProcess(ctx, job.InputPath, output)
	return nil
}

func (p *pipeline) resolveEncoder() (string, error) {
	if strings.TrimSpace(p.cfg.EncoderPath) == "" {
		return "", &Error{
			Kind: KindConfig,
			Op:   "encode",
			Msg:  "Exhale executable path not set. Set encoder_path in the settings.",
		}
	}
	path, err := p.starter.LookPath(p.cfg.EncoderPath)
	if err != nil {
		return "", &Error{
			Kind: KindConfig,
			Op:   "encode",
			Msg:  fmt.Sprintf("Exhale executable not found at: %s", p.cfg.EncoderPath),
			Err:  err,
		}
	}
	return path, nil
}

func (p *pipeline) resolveTranscoder() (string, error) {
	path, err := p.starter.LookPath(p.cfg.TranscoderPath)
	if err != nil {
		return "", &Error{
			Kind: KindConfig,
			Op:   "transcode",
			Msg:  fmt.Sprintf("FFmpeg executable not found: %s", p.cfg.TranscoderPath),
			Err:  err,
		}
	}
	return path, nil
}

func (p *pipeline) transcode(ctx context.Context, transcoder, input, wav string) error {
	proc, err := p.starter.Start(ctx, transcoder, audio.TranscodeArgs(input, wav)...)
	if err != nil {
		return startError("transcode", transcoder, err)
	}
	res, err := proc.Wait()
	if err != nil {
		return waitError("transcode", transcoder, err)
	}
	if res.ExitCode != 0 {
		msg := fmt.Sprintf("FFmpeg failed with exit code %d", res.ExitCode)
		if line := lastLine(res.Stderr); line != "" {
			msg += "\n\n" + line
		}
		return &Error{Kind: KindRuntime, Op: "transcode", Msg: msg}
	}
	return nil
}

func (p *pipeline) encode(ctx context.Context, encoder, input, output string, report func(float64)) error {
	// Only an output created by this encode is removed on failure.
	cleanup := func() {}
	if _, err := os.Lstat(output); errors.Is(err, os.ErrNotExist) {
		cleanup = func() { removeBestEffort(output, "partial output") }
	}

	proc, err := p.starter.Start(ctx, encoder, audio.EncodeArgs(p.cfg.Preset, input, output)...)
	if err != nil {
		return startError("encode", encoder, err)
	}

	stopped := simulateProgress(p.clock, p.cfg.Progress, proc.Done(), report)
	res, err := proc.Wait()
	stopped()

	if err != nil {
		cleanup()
		return waitError("encode", encoder, err)
	}
	if res.ExitCode != 0 {
		cleanup()
		msg := fmt.Sprintf("Exhale failed with exit code %d", res.ExitCode)
		if strings.TrimSpace(res.Stderr) != "" {
			msg = audio.Classify(res.Stderr, p.cfg.Preset).Message
		}
		return &Error{Kind: KindRuntime, Op: "encode", Msg: msg}
	}
	return nil
}

// postProcess runs the optional side effects of a successful encode.
// Their failures are logged and never fail the job.
func (p *pipeline) postProcess(ctx context.Context, source, output string) {
	if p.cfg.PreserveMetadata {
		if err := p.copyMetadata(ctx, source, output); err != nil {
			slog.Warn("metadata not copied", "path", output, "err", err)
		}
	}
	if p.cfg.DeleteSource {
		if err := os.Remove(source); err != nil {
			slog.Warn("source not deleted", "path", source, "err", err)
		} else {
			slog.Info("deleted", "path", source)
		}
	}
}

func (p *pipeline) copyMetadata(ctx context.Context, source, output string) error {
	transcoder, err := p.starter.LookPath(p.cfg.TranscoderPath)
	if err != nil {
		return err
	}
	tmp := output + ".meta.m4a"
	proc, err := p.starter.Start(ctx, transcoder, audio.MetadataArgs(output, source, tmp)...)
	if err != nil {
		return err
	}
	res, err := proc.Wait()
	if err == nil && res.ExitCode != 0 {
		err = fmt.Errorf("%s exited with code %d: %s", filepath.Base(transcoder), res.ExitCode, lastLine(res.Stderr))
	}
	if err != nil {
		removeBestEffort(tmp, "metadata file")
		return err
	}
	return os.Rename(tmp, output)
}

func startError(op, path string, err error) error {
	if errors.Is(err, audio.ErrNotFound) {
		return &Error{Kind: KindConfig, Op: op, Msg: fmt.Sprintf("Executable not found: %s", path), Err: err}
	}
	return &Error{Kind: KindLaunch, Op: op, Msg: fmt.Sprintf("Could not start %s: %v", filepath.Base(path), err), Err: err}
}

func waitError(op, path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Kind: KindRuntime, Op: op, Msg: fmt.Sprintf("%s did not finish: %v", filepath.Base(path), err), Err: err}
}

func removeBestEffort(path, what string) {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(what+" not removed", "path", path, "err", err)
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
