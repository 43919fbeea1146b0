// Package probe asks a child Python interpreter what a list of import
// statements actually binds.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"importlens/internal/binding"
	"importlens/internal/interp"
)

// DefaultTimeout bounds one probe run.
const DefaultTimeout = 10 * time.Second

// recordPrefix marks the harness's own output lines. Anything else on stdout
// was printed by the probed modules.
const recordPrefix = "@importlens "

// harness execs every argv entry into one shared namespace, skipping those
// that raise, then describes each resulting binding as a prefixed JSON line.
// Output of the imported modules is sent to stderr.
const harness = `import contextlib, inspect, json, sys
ns = {}
for stmt in sys.argv[1:]:
    try:
        with contextlib.redirect_stdout(sys.stderr):
            exec(stmt, ns)
    except (Exception, SystemExit):
        pass
for name, obj in list(ns.items()):
    if name.startswith("__"):
        continue
    record = {"name": name, "declared": "", "is_module": False, "module": ""}
    try:
        declared = getattr(obj, "__name__", None)
        if isinstance(declared, str):
            record["declared"] = declared
        record["is_module"] = inspect.ismodule(obj)
        module = inspect.getmodule(obj)
        if module is not None:
            record["module"] = module.__name__
    except Exception:
        pass
    sys.__stdout__.write("` + recordPrefix + `" + json.dumps(record) + "\n")
sys.__stdout__.flush()
`

// Runner executes a helper program in a child interpreter.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, program string, args ...string) (interp.Output, error)
}

type record struct {
	Name     string `json:"name"`
	Declared string `json:"declared"`
	IsModule bool   `json:"is_module"`
	Module   string `json:"module"`
}

// Prober runs the probe harness.
type Prober struct {
	runner  Runner
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a prober. A non-positive timeout selects DefaultTimeout.
func New(runner Runner, timeout time.Duration, logger *zap.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{runner: runner, timeout: timeout, logger: logger}
}

// Probe executes clauses in order in a single fresh namespace and returns
// the bindings they produced. Clauses that raise are left out.
func (p *Prober) Probe(ctx context.Context, clauses []string) (binding.Snapshot, error) {
	if len(clauses) == 0 {
		return nil, nil
	}

	out, err := p.runner.Run(ctx, p.timeout, harness, clauses...)
	if err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}

	b := binding.NewBuilder()
	for _, line := range out.Lines() {
		payload, ok := strings.CutPrefix(line, recordPrefix)
		if !ok {
			p.logger.Debug("ignoring module output", zap.String("line", line))
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("malformed probe output %q: %w", line, err)
		}
		b.Set(rec.Name, binding.Object{Name: rec.Declared, IsModule: rec.IsModule, Module: rec.Module})
	}

	p.logger.Debug("probe finished",
		zap.Int("clauses", len(clauses)),
		zap.Int("bindings", b.Len()),
		zap.Duration("duration", out.Duration))
	return b.Snapshot(), nil
}
