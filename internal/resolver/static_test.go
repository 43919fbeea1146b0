package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"importlens/internal/binding"
	"importlens/internal/extractor"
	"importlens/internal/reconstruct"
)

func extract(t *testing.T, src string) []*extractor.ImportUnit {
	t.Helper()
	ext, err := extractor.NewExtractor("python")
	require.NoError(t, err)
	units, err := ext.ExtractFromSource("test.py", []byte(src))
	require.NoError(t, err)
	return units
}

func TestStaticResolver_BindingRules(t *testing.T) {
	units := extract(t, strings.Join([]string{
		"import numpy.random",
		"import os.path as osp",
		"from math import floor, inf",
		"from bisect import insort",
		"from json import *",
		"from . import sibling",
		"from mystery import *",
		"from __future__ import annotations",
	}, "\n"))

	snap, stats, err := NewStaticResolver(nil, nil).Resolve(context.Background(), units)
	require.NoError(t, err)

	get := func(name string) binding.Object {
		t.Helper()
		b, ok := snap.Lookup(name)
		require.True(t, ok, "missing binding %s", name)
		return b.Object
	}

	assert.Equal(t, binding.Object{Name: "numpy", IsModule: true, Module: "numpy"}, get("numpy"))
	assert.Equal(t, binding.Object{Name: "posixpath", IsModule: true, Module: "posixpath"}, get("osp"))
	assert.Equal(t, binding.Object{Name: "floor", Module: "math"}, get("floor"))
	assert.Equal(t, binding.Object{}, get("inf"))
	assert.Equal(t, binding.Object{Name: "insort_right", Module: "_bisect"}, get("insort"))
	assert.Equal(t, binding.Object{Name: "JSONDecoder", Module: "json.decoder"}, get("JSONDecoder"))
	assert.Equal(t, "__future__", get("annotations").Module)

	_, ok := snap.Lookup("sibling")
	assert.False(t, ok, "relative imports are not bound")

	assert.Equal(t, stats.Attempted, stats.Resolved+stats.Skipped)
	// inf, the relative import and the unknown wildcard
	assert.Equal(t, 3, stats.Skipped)
}

func TestStaticResolver_ReconstructIsFixedPoint(t *testing.T) {
	src := strings.Join([]string{
		"import numpy as np",
		"import matplotlib.pyplot as plt",
		"import os.path",
		"from collections import OrderedDict, defaultdict as dd",
		"from functools import reduce, partial, wraps",
		"from bisect import insort",
		"from math import floor, inf",
		"from scipy import stats",
	}, "\n")

	resolver := NewStaticResolver(nil, nil)
	r := reconstruct.New(reconstruct.DefaultConfig())

	snap, _, err := resolver.Resolve(context.Background(), extract(t, src))
	require.NoError(t, err)
	first := r.Reconstruct(snap)
	require.NotEmpty(t, first)
	require.False(t, reconstruct.HasWildcard(first))

	again, _, err := resolver.Resolve(context.Background(), extract(t, strings.Join(first, "\n")))
	require.NoError(t, err)
	second := r.Reconstruct(again)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reconstruction is not stable (-first +second):\n%s", diff)
	}
}

func TestStaticResolver_LaterImportWins(t *testing.T) {
	units := extract(t, "from math import floor as f\nimport os\nfrom numpy import floor as f\n")
	snap, _, err := NewStaticResolver(nil, nil).Resolve(context.Background(), units)
	require.NoError(t, err)

	assert.Equal(t, []string{"f", "os"}, snap.Names())
	f, _ := snap.Lookup("f")
	assert.Equal(t, "numpy", f.Object.Module)
}

type fakeProber struct {
	clauses []string
	snap    binding.Snapshot
	err     error
}

func (f *fakeProber) Probe(_ context.Context, clauses []string) (binding.Snapshot, error) {
	f.clauses = clauses
	return f.snap, f.err
}

func TestProbeResolver_SendsClauses(t *testing.T) {
	units := extract(t, "import os, numpy as np\nfrom .pkg import thing\nfrom json import *\n")
	prober := &fakeProber{snap: binding.Snapshot{
		{Name: "os", Object: binding.Object{Name: "os", IsModule: true, Module: "os"}},
		{Name: "np", Object: binding.Object{Name: "numpy", IsModule: true, Module: "numpy"}},
		{Name: "dumps", Object: binding.Object{Name: "dumps", Module: "json"}},
		{Name: "__version__", Object: binding.Object{}},
	}}

	snap, stats, err := NewProbeResolver(prober).Resolve(context.Background(), units)
	require.NoError(t, err)

	assert.Equal(t, []string{"import os", "import numpy as np", "from json import *"}, prober.clauses)
	assert.Len(t, snap, 4)
	assert.Equal(t, 3, stats.Resolved)
	assert.Equal(t, 2, stats.Skipped)
}
