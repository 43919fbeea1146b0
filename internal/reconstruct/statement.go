package reconstruct

import (
	"fmt"
	"strings"
)

// Wildcard is the marker used by collapsed from-imports.
const Wildcard = "*"

func moduleImport(module, name string) string {
	if name == module {
		return "import " + module
	}
	return fmt.Sprintf("import %s as %s", module, name)
}

func fromImport(module string, names []string) string {
	return fmt.Sprintf("from %s import %s", module, strings.Join(names, ", "))
}

func aliasedFromImport(module, objName, name string) string {
	return fmt.Sprintf("from %s import %s as %s", module, objName, name)
}

func wildcardImport(module string) string {
	return fmt.Sprintf("from %s import %s", module, Wildcard)
}

// HasWildcard reports whether any statement collapses a group into `*`.
func HasWildcard(stmts []string) bool {
	for _, s := range stmts {
		if strings.Contains(s, Wildcard) {
			return true
		}
	}
	return false
}

// Listing renders statements for display, one per line. When a group was
// collapsed into a wildcard the listing starts with a note about the
// threshold that caused it.
func Listing(stmts []string, maxObj int) string {
	if len(stmts) == 0 {
		return ""
	}
	var sb strings.Builder
	if HasWildcard(stmts) {
		fmt.Fprintf(&sb, "# Objects are shown as '*' if more than %d\n", maxObj)
	}
	sb.WriteString(strings.Join(stmts, "\n"))
	return sb.String()
}
