package verify

import (
	"context"

	"go.uber.org/zap"
)

// ResultStore remembers whether a statement imported cleanly under a given
// interpreter.
type ResultStore interface {
	LookupVerifications(ctx context.Context, interpreter string, stmts []string) (map[string]bool, error)
	SaveVerifications(ctx context.Context, interpreter string, outcomes map[string]bool) error
}

// CachedVerifier answers statements known to import cleanly from a
// ResultStore and sends the rest to the interpreter. Failures are never
// stored, so a statement becomes valid as soon as its module is installed.
type CachedVerifier struct {
	verifier *Verifier
	store    ResultStore
	logger   *zap.Logger
}

// NewCached wraps v with store.
func NewCached(v *Verifier, store ResultStore, logger *zap.Logger) *CachedVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedVerifier{verifier: v, store: store, logger: logger}
}

// Verify behaves like Verifier.Verify. Valid outcomes of completed runs are
// stored. A zero timeout bypasses the store so the run times out as it
// would uncached.
func (c *CachedVerifier) Verify(ctx context.Context, stmts []string) (Result, error) {
	if len(stmts) == 0 {
		return Result{}, nil
	}
	if c.verifier.Timeout() == 0 {
		return c.verifier.Verify(ctx, stmts)
	}
	interpreter := c.verifier.Interpreter()

	known, err := c.store.LookupVerifications(ctx, interpreter, stmts)
	if err != nil {
		c.logger.Warn("verification cache lookup failed", zap.Error(err))
		known = nil
	}

	var pending []string
	hits := 0
	seen := make(map[string]struct{}, len(stmts))
	for _, s := range stmts {
		if known[s] {
			hits++
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		pending = append(pending, s)
	}

	fresh := make(map[string]bool, len(pending))
	if len(pending) > 0 {
		res, err := c.verifier.Verify(ctx, pending)
		if err != nil {
			return Result{}, err
		}
		if !res.Verified() {
			invalid := make([]string, len(stmts))
			copy(invalid, stmts)
			return Result{Invalid: invalid, Warning: res.Warning}, nil
		}
		failed := make(map[string]struct{}, len(res.Invalid))
		for _, s := range res.Invalid {
			failed[s] = struct{}{}
		}
		for _, s := range pending {
			if _, bad := failed[s]; !bad {
				fresh[s] = true
			}
		}
		if err := c.store.SaveVerifications(ctx, interpreter, fresh); err != nil {
			c.logger.Warn("verification cache update failed", zap.Error(err))
		}
	}

	c.logger.Debug("verification cache",
		zap.Int("hits", hits),
		zap.Int("misses", len(pending)))

	var invalid []string
	for _, s := range stmts {
		if !known[s] && !fresh[s] {
			invalid = append(invalid, s)
		}
	}
	return Result{Invalid: invalid}, nil
}
