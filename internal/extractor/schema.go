package extractor

import (
	"fmt"
	"strings"
)

// ImportKind classifies an import statement.
type ImportKind string

const (
	KindImport   ImportKind = "import"   // import a.b [as c]
	KindFrom     ImportKind = "from"     // from m import x [as y]
	KindWildcard ImportKind = "wildcard" // from m import *
	KindFuture   ImportKind = "future"   // from __future__ import x
)

// ImportName is one imported name as written in the source.
type ImportName struct {
	Name  string `json:"name"`            // Dotted name as written (e.g., "numpy.random")
	Alias string `json:"alias,omitempty"` // Name after `as`, if any
}

// ImportUnit represents a single import statement found in a source file.
type ImportUnit struct {
	ID        string       `json:"id"`               // Unique identifier (file_path:kind:start_line)
	Filepath  string       `json:"filepath"`         // Path to the source file
	Language  string       `json:"language"`         // Programming language
	StartLine int          `json:"start_line"`       // Starting line number in the source file
	EndLine   int          `json:"end_line"`         // Ending line number in the source file
	Content   string       `json:"content"`          // Raw source text of the statement
	Kind      ImportKind   `json:"kind"`             // Statement form
	Module    string       `json:"module,omitempty"` // Source module of a from-import, without leading dots
	Level     int          `json:"level,omitempty"`  // Number of leading dots of a relative import
	Names     []ImportName `json:"names,omitempty"`  // Imported names; empty for wildcards
	Scope     string       `json:"scope,omitempty"`  // Enclosing def/class path, empty at module level

	offset uint32
}

// Relative reports whether the statement is a relative from-import.
func (u *ImportUnit) Relative() bool {
	return u.Level > 0
}

// ModulePath returns the from-import source including its leading dots.
func (u *ImportUnit) ModulePath() string {
	return strings.Repeat(".", u.Level) + u.Module
}

// Bound returns the name an ImportName binds in the importing scope.
func (u *ImportUnit) Bound(n ImportName) string {
	if n.Alias != "" {
		return n.Alias
	}
	if u.Kind == KindImport {
		if i := strings.IndexByte(n.Name, '.'); i >= 0 {
			return n.Name[:i]
		}
	}
	return n.Name
}

// Clauses renders the statement as canonical single-name statements, one
// per imported name.
func (u *ImportUnit) Clauses() []string {
	if u.Kind == KindWildcard {
		return []string{fmt.Sprintf("from %s import *", u.ModulePath())}
	}
	out := make([]string, 0, len(u.Names))
	for _, n := range u.Names {
		var clause string
		if u.Kind == KindImport {
			clause = "import " + n.Name
		} else {
			clause = fmt.Sprintf("from %s import %s", u.ModulePath(), n.Name)
		}
		if n.Alias != "" {
			clause += " as " + n.Alias
		}
		out = append(out, clause)
	}
	return out
}
