package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"importlens/internal/config"
	"importlens/internal/crawler"
	"importlens/internal/extractor"
	"importlens/internal/index"
	"importlens/internal/interp"
	"importlens/internal/probe"
	"importlens/internal/reconstruct"
	"importlens/internal/resolver"
	"importlens/internal/storage"
	"importlens/internal/symtab"
	"importlens/internal/verify"
)

// statementVerifier is satisfied by both the plain and the cached verifier.
type statementVerifier interface {
	Verify(ctx context.Context, stmts []string) (verify.Result, error)
}

func (a *app) newChain() (*resolver.Chain, error) {
	table, err := symtab.Load(a.cfg.Symtab...)
	if err != nil {
		return nil, err
	}
	static := resolver.NewStaticResolver(table, a.logger)

	if a.cfg.Resolver == config.ResolverProbe {
		runner := interp.NewRunner(a.cfg.Python, a.logger)
		prober := probe.New(runner, a.cfg.ProbeTimeout, a.logger)
		return resolver.NewChain(a.logger, resolver.NewProbeResolver(prober), static), nil
	}
	return resolver.NewChain(a.logger, static), nil
}

func (a *app) newIndexer() (*index.Indexer, error) {
	ext, err := extractor.NewExtractor("python")
	if err != nil {
		return nil, err
	}
	chain, err := a.newChain()
	if err != nil {
		return nil, err
	}
	return index.NewIndexer(
		crawler.NewCrawler(a.logger),
		ext,
		chain,
		reconstruct.New(a.cfg.Reconstruct()),
		a.cfg.Workers,
		a.logger,
	), nil
}

// newVerifier returns a verifier backed by the configured database when it
// can be opened and --no-cache is not set. The returned closer must be
// called when done.
func (a *app) newVerifier(out io.Writer) (statementVerifier, func()) {
	runner := interp.NewRunner(a.cfg.Python, a.logger)
	v := verify.New(runner, verify.Options{Timeout: a.cfg.Timeout, Verbose: a.verbose, Out: out}, a.logger)

	if a.cfg.Database == "" || a.noCache {
		return v, func() {}
	}
	store, err := storage.NewSQLiteStore(a.cfg.Database)
	if err != nil {
		a.logger.Warn("verification cache unavailable", zap.String("database", a.cfg.Database), zap.Error(err))
		return v, func() {}
	}
	store.SetVerificationTTL(a.cfg.CacheTTL)
	return verify.NewCached(v, store, a.logger), func() { store.Close() }
}

func (a *app) openStore() (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", a.cfg.Database, err)
	}
	return store, nil
}
