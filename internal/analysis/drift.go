package analysis

import (
	"importlens/internal/index"
)

// FileDrift lists the statements a file gained and lost between two reports.
// A file only present in one report is entirely added or removed.
type FileDrift struct {
	Path    string
	Added   []string
	Removed []string
}

// DriftReport summarizes the files whose imports changed.
type DriftReport struct {
	Files []FileDrift
}

// Empty reports whether nothing changed.
func (d *DriftReport) Empty() bool {
	return len(d.Files) == 0
}

// Compare diffs the statements of every file of old and cur. A nil old
// report counts as empty. Files are listed in path order and statements
// keep the order of the report they come from.
func Compare(old, cur *index.Report) *DriftReport {
	if old == nil {
		old = &index.Report{}
	}
	if cur == nil {
		cur = &index.Report{}
	}

	report := &DriftReport{}
	i, j := 0, 0
	for i < len(old.Files) || j < len(cur.Files) {
		var before, after index.FileReport
		switch {
		case j == len(cur.Files) || (i < len(old.Files) && old.Files[i].Path < cur.Files[j].Path):
			before = old.Files[i]
			after.Path = before.Path
			i++
		case i == len(old.Files) || cur.Files[j].Path < old.Files[i].Path:
			after = cur.Files[j]
			before.Path = after.Path
			j++
		default:
			before, after = old.Files[i], cur.Files[j]
			i++
			j++
		}

		drift := FileDrift{
			Path:    after.Path,
			Added:   missingFrom(after.Statements, before.Statements),
			Removed: missingFrom(before.Statements, after.Statements),
		}
		if len(drift.Added) > 0 || len(drift.Removed) > 0 {
			report.Files = append(report.Files, drift)
		}
	}
	return report
}

// missingFrom returns the entries of a that b does not contain.
func missingFrom(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
