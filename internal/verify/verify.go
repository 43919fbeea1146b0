// Package verify checks reconstructed import statements by executing each of
// them in a clean, disposable interpreter process.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"importlens/internal/interp"
)

// DefaultTimeout bounds one verification run.
const DefaultTimeout = 5 * time.Second

// harness execs every argv entry in its own empty namespace and echoes the
// ones that fail to import.
const harness = `import sys
for stmt in sys.argv[1:]:
    try:
        exec(stmt, {})
    except ImportError:
        print(stmt)
`

// Runner executes a helper program in a child interpreter.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, program string, args ...string) (interp.Output, error)
	Interpreter() string
}

// Options tune a Verifier.
type Options struct {
	Timeout time.Duration
	// Verbose prints progress and the invalid statements to Out.
	Verbose bool
	Out     io.Writer
}

// DefaultOptions returns a five second timeout with diagnostics off. When
// turned on they go to stdout; callers printing statements on stdout pass
// another writer.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, Out: os.Stdout}
}

// TimeoutWarning reports a verification that could not complete in time.
type TimeoutWarning struct {
	Timeout time.Duration
}

func (w *TimeoutWarning) Error() string {
	return fmt.Sprintf("timed out after %v, verification failed", w.Timeout)
}

// Result of a verification run.
type Result struct {
	// Invalid holds the statements that failed to import, in input order.
	// After a timeout it holds every input statement.
	Invalid []string
	// Warning is set when the run could not complete.
	Warning error
}

// Verified reports whether the run completed.
func (r Result) Verified() bool {
	return r.Warning == nil
}

// Valid returns the statements of stmts not reported invalid.
func (r Result) Valid(stmts []string) []string {
	invalid := make(map[string]struct{}, len(r.Invalid))
	for _, s := range r.Invalid {
		invalid[strings.TrimSpace(s)] = struct{}{}
	}
	var out []string
	for _, s := range stmts {
		if _, bad := invalid[strings.TrimSpace(s)]; !bad {
			out = append(out, s)
		}
	}
	return out
}

// Verifier runs the verification harness.
type Verifier struct {
	runner Runner
	opts   Options
	logger *zap.Logger
}

// New creates a verifier.
func New(runner Runner, opts Options, logger *zap.Logger) *Verifier {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{runner: runner, opts: opts, logger: logger}
}

// Interpreter identifies the interpreter statements are verified against.
func (v *Verifier) Interpreter() string {
	return v.runner.Interpreter()
}

// Timeout returns the deadline of one run.
func (v *Verifier) Timeout() time.Duration {
	return v.opts.Timeout
}

// Verify executes stmts in a child interpreter and returns the ones that
// cannot be imported. A timeout is not an error: the returned Result carries a
// TimeoutWarning and lists every statement as invalid.
func (v *Verifier) Verify(ctx context.Context, stmts []string) (Result, error) {
	if len(stmts) == 0 {
		return Result{}, nil
	}

	v.printf("Verifying the import statements...\n")
	out, err := v.runner.Run(ctx, v.opts.Timeout, harness, stmts...)
	if errors.Is(err, interp.ErrTimeout) {
		warning := &TimeoutWarning{Timeout: v.opts.Timeout}
		v.logger.Warn("import verification did not complete",
			zap.Duration("timeout", v.opts.Timeout),
			zap.Int("statements", len(stmts)))
		invalid := make([]string, len(stmts))
		copy(invalid, stmts)
		return Result{Invalid: invalid, Warning: warning}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("verification harness failed: %w", err)
	}

	invalid := out.Lines()
	if len(invalid) == 0 {
		v.printf("--- All imports are verified ---\n")
	} else {
		v.printf("--- These import statements are invalid ---\n")
		for _, s := range invalid {
			v.printf("# %s\n", s)
		}
		v.printf("%s\n", strings.Repeat("-", 43))
	}
	v.logger.Debug("import verification finished",
		zap.Int("statements", len(stmts)),
		zap.Int("invalid", len(invalid)),
		zap.Duration("duration", out.Duration))

	return Result{Invalid: invalid}, nil
}

func (v *Verifier) printf(format string, args ...any) {
	if !v.opts.Verbose {
		return
	}
	fmt.Fprintf(v.opts.Out, format, args...)
}
