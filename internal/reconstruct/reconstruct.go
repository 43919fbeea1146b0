// Package reconstruct rebuilds Python import statements from a snapshot of
// bound names.
//
// The reconstructor classifies every binding as a module import, a plain
// from-import or an aliased from-import, groups plain from-imports per module
// and collapses large groups into a wildcard. It performs no I/O.
package reconstruct

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"importlens/internal/binding"
)

const (
	// DefaultMaxObj is the largest from-import group emitted by name.
	DefaultMaxObj = 3
	// DefaultSelfModule is excluded from every reconstruction.
	DefaultSelfModule = "importlens"
)

// Config controls one reconstruction.
type Config struct {
	// MaxObj is the wildcard threshold: a group of more than MaxObj names
	// becomes `from M import *`.
	MaxObj int
	// Ignore lists bound names, object names, module names and
	// `module.object` pairs to leave out.
	Ignore []string
	// Mapping replaces implementation module names with public ones. Nil
	// selects DefaultMapping.
	Mapping Mapping
	// SelfModule names the module hosting the tool itself.
	SelfModule string
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxObj:     DefaultMaxObj,
		Mapping:    DefaultMapping(),
		SelfModule: DefaultSelfModule,
	}
}

// Reconstructor turns snapshots into import statements. It is immutable and
// safe for concurrent use.
type Reconstructor struct {
	maxObj  int
	ignore  map[string]struct{}
	mapping Mapping
	self    string
}

// New creates a reconstructor for cfg.
func New(cfg Config) *Reconstructor {
	mapping := cfg.Mapping
	if mapping == nil {
		mapping = DefaultMapping()
	}
	ignore := make(map[string]struct{}, len(cfg.Ignore))
	for _, name := range cfg.Ignore {
		ignore[name] = struct{}{}
	}
	return &Reconstructor{
		maxObj:  cfg.MaxObj,
		ignore:  ignore,
		mapping: mapping.clone(),
		self:    cfg.SelfModule,
	}
}

// importGroup keeps from-import names per module in first-seen order.
type importGroup struct {
	modules []string
	names   map[string][]string
}

func (g *importGroup) add(module, name string) {
	if g.names == nil {
		g.names = make(map[string][]string)
	}
	if _, ok := g.names[module]; !ok {
		g.modules = append(g.modules, module)
	}
	g.names[module] = append(g.names[module], name)
}

// Reconstruct returns the import statements that reproduce the module
// bindings in snap: module imports first, then from-imports, each part
// sorted case-insensitively.
func (r *Reconstructor) Reconstruct(snap binding.Snapshot) []string {
	var regular, specific []string
	var groups importGroup

	for _, b := range snap {
		if strings.HasPrefix(b.Name, "__") {
			continue
		}
		if !b.Object.Resolved() {
			continue
		}

		moduleName := r.mapping.Normalize(b.Object.Module)
		objName := r.mapping.Normalize(b.Object.Name)

		if r.excluded(b.Name, objName, moduleName) {
			continue
		}

		if b.Object.IsModule && objName == moduleName {
			regular = append(regular, moduleImport(objName, b.Name))
			continue
		}

		if b.Name == objName {
			groups.add(moduleName, b.Name)
			continue
		}
		specific = append(specific, aliasedFromImport(moduleName, objName, b.Name))
	}

	for _, module := range groups.modules {
		names := groups.names[module]
		if len(names) > r.maxObj {
			specific = append(specific, wildcardImport(module))
		} else {
			specific = append(specific, fromImport(module, names))
		}
	}

	sortFolded(regular)
	sortFolded(specific)
	return append(regular, specific...)
}

func (r *Reconstructor) excluded(name, objName, moduleName string) bool {
	if strings.HasPrefix(moduleName, "__") || moduleName == r.self {
		return true
	}
	candidates := []string{
		moduleName,
		firstSegment(moduleName),
		objName,
		lastSegment(objName),
		name,
		lastSegment(name),
		moduleName + "." + objName,
	}
	for _, c := range candidates {
		if _, ok := r.ignore[c]; ok {
			return true
		}
	}
	return false
}

func firstSegment(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}

func lastSegment(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}

// sortFolded sorts statements in place by their Unicode case-folded text,
// keeping the input order of statements that fold to the same key.
func sortFolded(stmts []string) {
	fold := cases.Fold()
	keys := make(map[string]string, len(stmts))
	for _, s := range stmts {
		if _, ok := keys[s]; !ok {
			keys[s] = fold.String(s)
		}
	}
	sort.SliceStable(stmts, func(i, j int) bool {
		return keys[stmts[i]] < keys[stmts[j]]
	})
}
