// Package interp runs fixed helper programs in a child Python interpreter.
//
// Programs are constant source text passed with -c; every variable input
// travels as a separate argv entry, so nothing is ever spliced into code.
package interp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultPython is the interpreter looked up on PATH when none is configured.
const DefaultPython = "python3"

var (
	// ErrTimeout is returned when the child outlives its deadline and is killed.
	ErrTimeout = errors.New("interpreter timed out")
	// ErrInterpreterNotFound is returned when the interpreter cannot be located.
	ErrInterpreterNotFound = errors.New("python interpreter not found")
)

// ExitError describes a child that exited with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
		msg = msg[i+1:]
	}
	if msg == "" {
		return fmt.Sprintf("interpreter exited with status %d", e.Code)
	}
	return fmt.Sprintf("interpreter exited with status %d: %s", e.Code, msg)
}

// Output is what a finished child wrote.
type Output struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Lines splits stdout into its non-empty lines.
func (o Output) Lines() []string {
	var lines []string
	for _, line := range strings.Split(o.Stdout, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Runner spawns one interpreter process per Run call.
type Runner struct {
	Python string
	Logger *zap.Logger
}

// NewRunner creates a runner for the given interpreter; empty selects
// DefaultPython.
func NewRunner(python string, logger *zap.Logger) *Runner {
	if python == "" {
		python = DefaultPython
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Python: python, Logger: logger}
}

// Interpreter returns the configured interpreter name or path.
func (r *Runner) Interpreter() string {
	if r.Python == "" {
		return DefaultPython
	}
	return r.Python
}

// Run executes program with args in a fresh interpreter and waits at most
// timeout for it. A zero timeout is already expired.
func (r *Runner) Run(ctx context.Context, timeout time.Duration, program string, args ...string) (Output, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	path, err := exec.LookPath(r.Interpreter())
	if err != nil {
		return Output{}, fmt.Errorf("%w: %s", ErrInterpreterNotFound, r.Interpreter())
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := append([]string{"-c", program}, args...)
	cmd := exec.CommandContext(ctx, path, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err = cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}

	logger.Debug("interpreter finished",
		zap.String("python", path),
		zap.Int("args", len(args)),
		zap.Duration("duration", out.Duration),
		zap.Error(err))

	if err == nil {
		return out, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, &ExitError{Code: exitErr.ExitCode(), Stderr: out.Stderr}
	}
	return out, fmt.Errorf("failed to run %s: %w", path, err)
}
