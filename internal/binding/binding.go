// Package binding models a snapshot of the names bound in a Python scope.
package binding

// Object is what a bound name refers to, reduced to the three facts the
// reconstructor needs.
type Object struct {
	Name     string `json:"declared"`  // The object's own __name__; empty when it has none
	IsModule bool   `json:"is_module"` // The object is a module
	Module   string `json:"module"`    // Defining module; empty when it cannot be determined
}

// Resolved reports whether the object has both a declared name and an origin.
func (o Object) Resolved() bool {
	return o.Name != "" && o.Module != ""
}

// Binding is one name-to-object association.
type Binding struct {
	Name   string `json:"name"`
	Object Object `json:"object"`
}

// Snapshot is an ordered set of bindings. Order is first-seen order and
// names are unique.
type Snapshot []Binding

// Names returns the bound names in order.
func (s Snapshot) Names() []string {
	names := make([]string, len(s))
	for i, b := range s {
		names[i] = b.Name
	}
	return names
}

// Lookup returns the binding for name.
func (s Snapshot) Lookup(name string) (Binding, bool) {
	for _, b := range s {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// Builder accumulates bindings with dictionary semantics: rebinding a name
// replaces its object but keeps its original position.
type Builder struct {
	order []string
	index map[string]int
	objs  []Object
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// Set binds name to obj.
func (b *Builder) Set(name string, obj Object) {
	if i, ok := b.index[name]; ok {
		b.objs[i] = obj
		return
	}
	b.index[name] = len(b.order)
	b.order = append(b.order, name)
	b.objs = append(b.objs, obj)
}

// Len returns the number of distinct names.
func (b *Builder) Len() int {
	return len(b.order)
}

// Snapshot returns the accumulated bindings.
func (b *Builder) Snapshot() Snapshot {
	out := make(Snapshot, len(b.order))
	for i, name := range b.order {
		out[i] = Binding{Name: name, Object: b.objs[i]}
	}
	return out
}

// Merge combines a scope's global and local bindings the way a frame sees
// them: globals first, locals override on collision without moving the name,
// and names only present locally are appended.
func Merge(globals, locals Snapshot) Snapshot {
	b := NewBuilder()
	for _, g := range globals {
		b.Set(g.Name, g.Object)
	}
	for _, l := range locals {
		b.Set(l.Name, l.Object)
	}
	return b.Snapshot()
}
