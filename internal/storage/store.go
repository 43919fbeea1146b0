package storage

import (
	"context"

	"importlens/internal/index"
)

// Store combines report and verification storage capabilities.
type Store interface {
	ReportStore
	VerificationStore
	Close() error
}

// ReportStore defines operations for persisting scan reports.
type ReportStore interface {
	// SaveReport replaces the stored report with r.
	SaveReport(ctx context.Context, r *index.Report) error

	// LoadReport returns the stored report, empty when nothing was saved.
	LoadReport(ctx context.Context) (*index.Report, error)
}

// VerificationStore caches statement validity per interpreter.
type VerificationStore interface {
	// LookupVerifications returns the known outcomes among stmts.
	LookupVerifications(ctx context.Context, interpreter string, stmts []string) (map[string]bool, error)

	// SaveVerifications upserts outcomes.
	SaveVerifications(ctx context.Context, interpreter string, outcomes map[string]bool) error
}
