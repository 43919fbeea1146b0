package graph

import "strings"

type RelationKind string

const (
	RelationImports     RelationKind = "imports"      // import M
	RelationImportsFrom RelationKind = "imports_from" // from M import N
	RelationWildcard    RelationKind = "wildcard"     // from M import *
)

// ParseStatement returns the module a reconstructed statement imports from
// and how. It reports false for text that is not an import statement.
func ParseStatement(stmt string) (string, RelationKind, bool) {
	fields := strings.Fields(stmt)
	if len(fields) < 2 {
		return "", "", false
	}
	switch fields[0] {
	case "import":
		return strings.TrimSuffix(fields[1], ","), RelationImports, true
	case "from":
		if len(fields) < 4 || fields[2] != "import" {
			return "", "", false
		}
		if fields[3] == "*" {
			return fields[1], RelationWildcard, true
		}
		return fields[1], RelationImportsFrom, true
	}
	return "", "", false
}
