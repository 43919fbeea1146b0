package resolver

import (
	"context"

	"go.uber.org/zap"

	"importlens/internal/binding"
	"importlens/internal/extractor"
	"importlens/internal/symtab"
)

// StaticResolver applies Python's import binding rules using a symbol table
// instead of an interpreter.
type StaticResolver struct {
	table  *symtab.Table
	logger *zap.Logger
}

func NewStaticResolver(table *symtab.Table, logger *zap.Logger) *StaticResolver {
	if table == nil {
		table = symtab.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaticResolver{table: table, logger: logger}
}

func (r *StaticResolver) Name() string {
	return "static"
}

func (r *StaticResolver) Resolve(_ context.Context, units []*extractor.ImportUnit) (binding.Snapshot, ResolveStats, error) {
	var stats ResolveStats
	b := binding.NewBuilder()

	set := func(name string, obj binding.Object) {
		stats.Attempted++
		if obj.Resolved() {
			stats.Resolved++
		} else {
			stats.Skipped++
		}
		b.Set(name, obj)
	}

	for _, u := range units {
		switch u.Kind {
		case extractor.KindImport:
			for _, n := range u.Names {
				if n.Alias != "" {
					set(n.Alias, r.table.ModuleObject(n.Name))
				} else {
					set(u.Bound(n), r.table.ModuleObject(u.Bound(n)))
				}
			}

		case extractor.KindFuture:
			for _, n := range u.Names {
				set(u.Bound(n), binding.Object{Name: n.Name, Module: "__future__"})
			}

		case extractor.KindFrom:
			if u.Relative() {
				stats.Attempted += len(u.Names)
				stats.Skipped += len(u.Names)
				r.logger.Debug("relative import left unresolved", zap.String("unit", u.ID))
				continue
			}
			for _, n := range u.Names {
				set(u.Bound(n), r.table.Resolve(u.Module, n.Name))
			}

		case extractor.KindWildcard:
			names, ok := r.table.Wildcard(u.Module)
			if u.Relative() || !ok {
				stats.Attempted++
				stats.Skipped++
				r.logger.Debug("wildcard import left unresolved", zap.String("unit", u.ID), zap.String("module", u.ModulePath()))
				continue
			}
			for _, name := range names {
				set(name, r.table.Resolve(u.Module, name))
			}
		}
	}

	return b.Snapshot(), stats, nil
}
