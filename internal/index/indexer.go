package index

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"importlens/internal/binding"
	"importlens/internal/crawler"
	"importlens/internal/extractor"
	"importlens/internal/reconstruct"
	"importlens/internal/resolver"
)

// DefaultWorkers bounds the number of files processed at once.
const DefaultWorkers = 4

// ErrUnknownScope is returned by Inspect for a scope no def or class of the
// file declares.
var ErrUnknownScope = errors.New("unknown scope")

// Indexer runs extract, resolve and reconstruct over source files.
type Indexer struct {
	crawler       *crawler.Crawler
	extractor     *extractor.Extractor
	chain         *resolver.Chain
	reconstructor *reconstruct.Reconstructor
	workers       int
	logger        *zap.Logger
}

// NewIndexer creates a new indexer. A non-positive workers count uses
// DefaultWorkers.
func NewIndexer(c *crawler.Crawler, ext *extractor.Extractor, chain *resolver.Chain, r *reconstruct.Reconstructor, workers int, logger *zap.Logger) *Indexer {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		crawler:       c,
		extractor:     ext,
		chain:         chain,
		reconstructor: r,
		workers:       workers,
		logger:        logger,
	}
}

// Inspection is the full pipeline output for one file.
type Inspection struct {
	Units    []*extractor.ImportUnit
	Snapshot binding.Snapshot
	Stages   []resolver.StageResult
	Report   FileReport
}

// Inspect runs the pipeline for a single file. With a non-empty scope the
// snapshot is the frame of that def or class.
func (i *Indexer) Inspect(ctx context.Context, path, scope string) (*Inspection, error) {
	units, err := i.extractor.ExtractFromFile(path)
	if err != nil {
		return nil, err
	}
	if scope != "" && len(resolver.InScope(units, scope)) == 0 {
		if err := i.checkScope(path, scope); err != nil {
			return nil, err
		}
	}
	snap, stages, err := i.chain.Frame(ctx, units, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	unresolved := 0
	for _, s := range stages {
		if s.Err == nil {
			unresolved += s.Stats.Skipped
		}
	}
	return &Inspection{
		Units:    units,
		Snapshot: snap,
		Stages:   stages,
		Report: FileReport{
			Path:       path,
			Statements: i.reconstructor.Reconstruct(snap),
			Unresolved: unresolved,
		},
	}, nil
}

func (i *Indexer) checkScope(path, scope string) error {
	scopes, err := i.extractor.ScopesFromFile(path)
	if err != nil {
		return err
	}
	if !slices.Contains(scopes, scope) {
		return fmt.Errorf("%w %q in %s", ErrUnknownScope, scope, path)
	}
	return nil
}

// BuildReport scans the project root and reconstructs the imports of every
// Python file in it.
func (i *Indexer) BuildReport(ctx context.Context, root string) (*Report, error) {
	files, err := i.crawler.Files(root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	r, err := i.BuildReportFor(ctx, files)
	if err != nil {
		return nil, err
	}
	r.Root = root
	return r, nil
}

// BuildReportFor reconstructs the imports of the given files. Files that
// cannot be processed are logged and left out of the report.
func (i *Indexer) BuildReportFor(ctx context.Context, files []string) (*Report, error) {
	var (
		mu     sync.Mutex
		report = &Report{Files: make([]FileReport, 0, len(files))}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			insp, err := i.Inspect(gctx, path, "")
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				i.logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
				return nil
			}
			i.logger.Debug("indexed file",
				zap.String("path", path),
				zap.Int("imports", len(insp.Units)),
				zap.Int("statements", len(insp.Report.Statements)))

			mu.Lock()
			report.Files = append(report.Files, insp.Report)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.sort()
	return report, nil
}
