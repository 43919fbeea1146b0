package resolver

import (
	"context"

	"importlens/internal/binding"
	"importlens/internal/extractor"
)

// Prober reports what a list of import statements binds at runtime.
type Prober interface {
	Probe(ctx context.Context, clauses []string) (binding.Snapshot, error)
}

// ProbeResolver resolves imports by executing them in a child interpreter.
// Relative imports are not sent since they have no package to resolve against.
type ProbeResolver struct {
	prober Prober
}

func NewProbeResolver(p Prober) *ProbeResolver {
	return &ProbeResolver{prober: p}
}

func (r *ProbeResolver) Name() string {
	return "probe"
}

func (r *ProbeResolver) Resolve(ctx context.Context, units []*extractor.ImportUnit) (binding.Snapshot, ResolveStats, error) {
	var stats ResolveStats
	var clauses []string
	for _, u := range units {
		if u.Relative() {
			stats.Skipped += len(u.Clauses())
			continue
		}
		clauses = append(clauses, u.Clauses()...)
	}
	stats.Attempted = len(clauses) + stats.Skipped

	snap, err := r.prober.Probe(ctx, clauses)
	if err != nil {
		return nil, stats, err
	}
	for _, b := range snap {
		if b.Object.Resolved() {
			stats.Resolved++
		} else {
			stats.Skipped++
		}
	}
	return snap, stats, nil
}
