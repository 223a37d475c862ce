package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound is returned when an executable path does not resolve
// to an existing, executable file. No process is spawned in that case.
var ErrNotFound = errors.New("executable not found")

// waitDelay bounds how long Wait blocks on output pipes after the process was killed.
const waitDelay = 5 * time.Second

// ExecCmdCtx creates the command for one invocation. Production code passes
// exec.CommandContext, tests pass a function re-executing the test binary.
type ExecCmdCtx = func(ctx context.Context, name string, args ...string) *exec.Cmd

// Result is what a terminated process left behind.
// A non-zero ExitCode is not an error at this layer.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Process is one spawned external program.
type Process interface {
	// Done is closed once the process has exited and was reaped.
	Done() <-chan struct{}
	// Wait blocks until Done and returns the captured output.
	Wait() (Result, error)
}

// Starter launches external programs.
type Starter interface {
	LookPath(file string) (string, error)
	Start(ctx context.Context, path string, args ...string) (Process, error)
}

// LaunchError reports an OS level failure to spawn a resolved executable.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Runner spawns processes through an ExecCmdCtx.
type Runner struct {
	execCmdCtx ExecCmdCtx
}

func NewRunner(execCmdCtx ExecCmdCtx) *Runner {
	return &Runner{execCmdCtx: execCmdCtx}
}

// LookPath resolves file to an executable. Names without a path separator
// are searched in PATH, everything else must point to an executable file.
func (r *Runner) LookPath(file string) (string, error) {
	if strings.TrimSpace(file) == "" {
		return "", fmt.Errorf("%w: path is empty", ErrNotFound)
	}
	path, err := exec.LookPath(file)
	if err != nil && !errors.Is(err, exec.ErrDot) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, file)
	}
	return path, nil
}

// Start resolves path and spawns it with args. Standard output and standard
// error are captured separately.
func (r *Runner) Start(ctx context.Context, path string, args ...string) (Process, error) {
	resolved, err := r.LookPath(path)
	if err != nil {
		return nil, err
	}

	p := &process{done: make(chan struct{}), ctx: ctx}
	p.cmd = r.execCmdCtx(ctx, resolved, args...)
	p.cmd.Stdout = &p.stdout
	p.cmd.Stderr = &p.stderr
	p.cmd.WaitDelay = waitDelay

	slog.Debug("execute", "cmd", strings.Join(append([]string{resolved}, args...), " "))

	if err := p.cmd.Start(); err != nil {
		return nil, &LaunchError{Path: resolved, Err: err}
	}
	go p.wait()
	return p, nil
}

// Run starts the process and waits for it.
func (r *Runner) Run(ctx context.Context, path string, args ...string) (Result, error) {
	p, err := r.Start(ctx, path, args...)
	if err != nil {
		return Result{}, err
	}
	return p.Wait()
}

type process struct {
	ctx    context.Context
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer

	done   chan struct{}
	result Result
	err    error
}

func (p *process) wait() {
	defer close(p.done)

	err := p.cmd.Wait()
	p.result = Result{
		ExitCode: p.cmd.ProcessState.ExitCode(),
		Stdout:   p.stdout.String(),
		Stderr:   p.stderr.String(),
	}
	if ctxErr := p.ctx.Err(); ctxErr != nil {
		p.err = ctxErr
		return
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.err = err
	}
}

func (p *process) Done() <-chan struct{} {
	return p.done
}

func (p *process) Wait() (Result, error) {
	<-p.done
	return p.result, p.err
}
