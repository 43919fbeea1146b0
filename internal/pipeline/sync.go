// Package pipeline runs a scan end to end: detect changes, rebuild the
// report, compare it with the stored one and save it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"importlens/internal/analysis"
	"importlens/internal/git"
	"importlens/internal/index"
	"importlens/internal/storage"
)

// ChangeLister reports the Python files changed in dir since ref.
type ChangeLister func(ctx context.Context, dir, ref string) ([]git.ChangedFile, error)

type Sync struct {
	Indexer *index.Indexer
	Store   storage.ReportStore
	Changes ChangeLister
	Out     io.Writer
	Logger  *zap.Logger
}

// Result is the outcome of one sync.
type Result struct {
	Report   *index.Report
	Drift    *analysis.DriftReport
	Changed  int // Files reported by git; zero on a full scan
	Duration time.Duration
}

type updatePlan struct {
	Full    bool
	Files   []string
	Removed []string
	Changed int
}

func NewSync(idx *index.Indexer, store storage.ReportStore, out io.Writer, logger *zap.Logger) *Sync {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sync{Indexer: idx, Store: store, Changes: git.ChangedPythonFiles, Out: out, Logger: logger}
}

// Run scans dir. With a non-empty since only the files git reports as
// changed are rebuilt and the rest of the stored report is kept.
func (s *Sync) Run(ctx context.Context, dir, since string) (*Result, error) {
	start := time.Now()

	stored, err := s.Store.LoadReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored report: %w", err)
	}

	plan, err := s.detectChangesStage(ctx, dir, since)
	if err != nil {
		return nil, err
	}

	fresh, err := s.reportUpdateStage(ctx, dir, stored, plan)
	if err != nil {
		return nil, err
	}

	drift := analysis.Compare(stored, fresh)
	s.Logger.Debug("drift computed", zap.Int("files", len(drift.Files)))

	if err := s.Store.SaveReport(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	return &Result{
		Report:   fresh,
		Drift:    drift,
		Changed:  plan.Changed,
		Duration: time.Since(start),
	}, nil
}

func (s *Sync) detectChangesStage(ctx context.Context, dir, since string) (*updatePlan, error) {
	if since == "" {
		return &updatePlan{Full: true}, nil
	}

	changes, err := s.Changes(ctx, dir, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get git changes: %w", err)
	}
	fmt.Fprintf(s.Out, "📝 Detected %d changed Python files since %s.\n", len(changes), since)

	plan := &updatePlan{Changed: len(changes)}
	for _, c := range changes {
		path := filepath.Join(dir, c.Path)
		if c.Deleted {
			plan.Removed = append(plan.Removed, path)
		} else {
			plan.Files = append(plan.Files, path)
		}
	}
	return plan, nil
}

func (s *Sync) reportUpdateStage(ctx context.Context, dir string, stored *index.Report, plan *updatePlan) (*index.Report, error) {
	if plan.Full {
		r, err := s.Indexer.BuildReport(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("full scan failed: %w", err)
		}
		return r, nil
	}

	update, err := s.Indexer.BuildReportFor(ctx, plan.Files)
	if err != nil {
		return nil, fmt.Errorf("incremental scan failed: %w", err)
	}
	fresh := stored.With(update, plan.Removed...)
	fresh.Root = dir
	return fresh, nil
}
