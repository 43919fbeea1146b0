// Package symtab describes what importing a Python name yields without
// running Python: which names are submodules, which objects are defined in a
// different module than the one they are imported from, and which names are
// plain values that carry no module at all.
package symtab

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"importlens/internal/binding"
)

//go:embed builtin.yaml
var builtinTable []byte

// MemberKind classifies a module attribute.
type MemberKind string

const (
	KindFunction MemberKind = "function"
	KindClass    MemberKind = "class"
	KindModule   MemberKind = "module"
	KindValue    MemberKind = "value"
)

// Member describes one attribute of a module.
type Member struct {
	Kind   MemberKind `yaml:"kind,omitempty"`
	Origin string     `yaml:"origin,omitempty"` // Defining module; defaults to the importing module
	Name   string     `yaml:"name,omitempty"`   // Declared __name__; defaults to the attribute name
}

// Module describes one importable module.
type Module struct {
	Name       string            `yaml:"name,omitempty"` // Real __name__ when it differs from the import path
	All        []string          `yaml:"all,omitempty"`
	Submodules []string          `yaml:"submodules,omitempty"`
	Members    map[string]Member `yaml:"members,omitempty"`
}

// Table maps dotted module paths to their description.
type Table struct {
	Modules map[string]*Module `yaml:"modules"`
}

// New returns an empty table.
func New() *Table {
	return &Table{Modules: make(map[string]*Module)}
}

// Parse decodes a YAML table.
func Parse(data []byte) (*Table, error) {
	t := New()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse symbol table: %w", err)
	}
	if t.Modules == nil {
		t.Modules = make(map[string]*Module)
	}
	for name, m := range t.Modules {
		if m == nil {
			t.Modules[name] = &Module{}
			continue
		}
		for attr, member := range m.Members {
			switch member.Kind {
			case "", KindFunction, KindClass, KindModule, KindValue:
			default:
				return nil, fmt.Errorf("module %s: member %s: unknown kind %q", name, attr, member.Kind)
			}
		}
	}
	return t, nil
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Parse(builtinTable)
	if err != nil {
		panic(fmt.Sprintf("symtab: built-in table: %v", err))
	}
	return t
}

// Load returns the built-in table with each file layered on top in order.
func Load(paths ...string) (*Table, error) {
	t := Default()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read symbol table %s: %w", path, err)
		}
		layer, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		t.Merge(layer)
	}
	return t, nil
}

// Merge layers other over t. Lists are replaced when other sets them and
// members are overridden one by one.
func (t *Table) Merge(other *Table) {
	for name, src := range other.Modules {
		dst, ok := t.Modules[name]
		if !ok {
			dst = &Module{}
			t.Modules[name] = dst
		}
		if src.Name != "" {
			dst.Name = src.Name
		}
		if src.All != nil {
			dst.All = append([]string(nil), src.All...)
		}
		if src.Submodules != nil {
			dst.Submodules = append([]string(nil), src.Submodules...)
		}
		if len(src.Members) > 0 && dst.Members == nil {
			dst.Members = make(map[string]Member, len(src.Members))
		}
		for attr, member := range src.Members {
			dst.Members[attr] = member
		}
	}
}

// ModuleObject returns the object bound by importing the dotted module path.
func (t *Table) ModuleObject(path string) binding.Object {
	name := path
	if m, ok := t.Modules[path]; ok && m.Name != "" {
		name = m.Name
	}
	return binding.Object{Name: name, IsModule: true, Module: name}
}

// Resolve returns the object bound by `from module import attr`. Value
// members resolve to an object without origin.
func (t *Table) Resolve(module, attr string) binding.Object {
	m := t.Modules[module]
	if m != nil {
		for _, sub := range m.Submodules {
			if sub == attr {
				return t.ModuleObject(module + "." + attr)
			}
		}
		if member, ok := m.Members[attr]; ok {
			return member.object(module, attr)
		}
	}
	if _, ok := t.Modules[module+"."+attr]; ok {
		return t.ModuleObject(module + "." + attr)
	}
	return binding.Object{Name: attr, Module: module}
}

func (member Member) object(module, attr string) binding.Object {
	switch member.Kind {
	case KindValue:
		return binding.Object{}
	case KindModule:
		origin := member.Origin
		if origin == "" {
			origin = module + "." + attr
		}
		return binding.Object{Name: origin, IsModule: true, Module: origin}
	}
	obj := binding.Object{Name: attr, Module: module}
	if member.Origin != "" {
		obj.Module = member.Origin
	}
	if member.Name != "" {
		obj.Name = member.Name
	}
	return obj
}

// Wildcard returns the names bound by `from module import *`, or false when
// the table does not know them.
func (t *Table) Wildcard(module string) ([]string, bool) {
	m, ok := t.Modules[module]
	if !ok || m.All == nil {
		return nil, false
	}
	names := make([]string, 0, len(m.All))
	for _, name := range m.All {
		if strings.HasPrefix(name, "_") {
			continue
		}
		names = append(names, name)
	}
	return names, true
}
