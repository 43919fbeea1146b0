package resolver

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"importlens/internal/binding"
	"importlens/internal/extractor"
)

type ResolveStats struct {
	Attempted int
	Resolved  int
	Skipped   int
}

// BindingResolver turns extracted import statements into the bindings they
// create.
type BindingResolver interface {
	Name() string
	Resolve(ctx context.Context, units []*extractor.ImportUnit) (binding.Snapshot, ResolveStats, error)
}

type StageResult struct {
	Resolver string
	Stats    ResolveStats
	Err      error
}

// Chain tries resolvers in order; the first one that succeeds wins.
type Chain struct {
	resolvers []BindingResolver
	logger    *zap.Logger
}

func NewChain(logger *zap.Logger, resolvers ...BindingResolver) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{resolvers: resolvers, logger: logger}
}

// Run resolves units with the first resolver that does not fail.
func (c *Chain) Run(ctx context.Context, units []*extractor.ImportUnit) (binding.Snapshot, []StageResult, error) {
	if len(c.resolvers) == 0 {
		return nil, nil, errors.New("no resolvers configured")
	}

	var out []StageResult
	var lastErr error
	for _, r := range c.resolvers {
		snap, stats, err := r.Resolve(ctx, units)
		out = append(out, StageResult{Resolver: r.Name(), Stats: stats, Err: err})
		if err == nil {
			return snap, out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, out, ctxErr
		}
		c.logger.Warn("resolver failed, trying next", zap.String("resolver", r.Name()), zap.Error(err))
		lastErr = err
	}
	return nil, out, lastErr
}

// Frame resolves the bindings visible inside scope: module-level imports
// overlaid with the imports made directly in scope. An empty scope merges
// every import of the file in source order.
func (c *Chain) Frame(ctx context.Context, units []*extractor.ImportUnit, scope string) (binding.Snapshot, []StageResult, error) {
	if scope == "" {
		return c.Run(ctx, units)
	}

	globals, stages, err := c.Run(ctx, InScope(units, ""))
	if err != nil {
		return nil, stages, err
	}
	locals, more, err := c.Run(ctx, InScope(units, scope))
	stages = append(stages, more...)
	if err != nil {
		return nil, stages, err
	}
	return binding.Merge(globals, locals), stages, nil
}

// InScope returns the units whose enclosing scope is exactly scope.
func InScope(units []*extractor.ImportUnit, scope string) []*extractor.ImportUnit {
	var out []*extractor.ImportUnit
	for _, u := range units {
		if u.Scope == scope {
			out = append(out, u)
		}
	}
	return out
}
