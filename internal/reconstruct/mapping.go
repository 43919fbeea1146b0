package reconstruct

// Mapping replaces implementation module names with the public module that
// re-exports the same objects.
type Mapping map[string]string

// DefaultMapping returns the built-in replacements. Each entry has been
// checked to import the identical objects from the public name.
func DefaultMapping() Mapping {
	return Mapping{
		"_bisect":    "bisect",
		"_csv":       "csv",
		"_heapq":     "heapq",
		"_operator":  "operator",
		"_functools": "functools",
	}
}

// Normalize returns the public name for module, or module itself.
func (m Mapping) Normalize(module string) string {
	if public, ok := m[module]; ok {
		return public
	}
	return module
}

func (m Mapping) clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
