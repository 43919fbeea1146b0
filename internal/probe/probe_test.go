package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"importlens/internal/binding"
	"importlens/internal/interp"
)

type fakeRunner struct {
	args []string
	out  interp.Output
	err  error
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, _ string, args ...string) (interp.Output, error) {
	f.args = args
	return f.out, f.err
}

func TestProbe_ParsesRecords(t *testing.T) {
	runner := &fakeRunner{out: interp.Output{Stdout: `@importlens {"name": "np", "declared": "numpy", "is_module": true, "module": "numpy"}
loading plugins...
@importlens {"name": "inf", "declared": "", "is_module": false, "module": ""}
`}}
	snap, err := New(runner, 0, nil).Probe(context.Background(), []string{"import numpy as np", "from math import inf"})
	require.NoError(t, err)

	assert.Equal(t, []string{"import numpy as np", "from math import inf"}, runner.args)
	assert.Equal(t, binding.Snapshot{
		{Name: "np", Object: binding.Object{Name: "numpy", IsModule: true, Module: "numpy"}},
		{Name: "inf", Object: binding.Object{}},
	}, snap)
}

func TestProbe_EmptyInput(t *testing.T) {
	runner := &fakeRunner{}
	snap, err := New(runner, 0, nil).Probe(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, snap)
	assert.Nil(t, runner.args)
}

func TestProbe_Errors(t *testing.T) {
	_, err := New(&fakeRunner{err: interp.ErrTimeout}, 0, nil).Probe(context.Background(), []string{"import os"})
	assert.ErrorIs(t, err, interp.ErrTimeout)

	_, err = New(&fakeRunner{out: interp.Output{Stdout: "@importlens not json\n"}}, 0, nil).Probe(context.Background(), []string{"import os"})
	assert.ErrorContains(t, err, "malformed probe output")
}

func TestProbe_Python(t *testing.T) {
	if _, err := exec.LookPath(interp.DefaultPython); err != nil {
		t.Skip("python3 not available")
	}
	p := New(interp.NewRunner("", nil), 0, nil)

	snap, err := p.Probe(context.Background(), []string{
		"import os",
		"from math import floor",
		"from math import inf",
		"from json.encoder import re",
		"from os import path",
		"import definitely_missing_module_x",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"os", "floor", "inf", "re", "path"}, snap.Names())

	b, _ := snap.Lookup("floor")
	assert.Equal(t, binding.Object{Name: "floor", Module: "math"}, b.Object)

	b, _ = snap.Lookup("inf")
	assert.False(t, b.Object.Resolved())

	b, _ = snap.Lookup("re")
	assert.Equal(t, binding.Object{Name: "re", IsModule: true, Module: "re"}, b.Object)

	b, _ = snap.Lookup("path")
	assert.True(t, b.Object.IsModule)
	assert.NotEqual(t, "path", b.Object.Name)
}

func TestProbe_PythonMisbehavingModules(t *testing.T) {
	if _, err := exec.LookPath(interp.DefaultPython); err != nil {
		t.Skip("python3 not available")
	}
	site := t.TempDir()
	modules := map[string]string{
		"noisy_mod.py":   "print('hello from import')\ndef f():\n    pass\n",
		"broken_mod.py":  "raise RuntimeError('boom')\n",
		"exiting_mod.py": "import sys\nsys.exit(3)\n",
		"invalid_mod.py": "def (:\n",
	}
	for name, src := range modules {
		require.NoError(t, os.WriteFile(filepath.Join(site, name), []byte(src), 0o644))
	}
	t.Setenv("PYTHONPATH", site)

	snap, err := New(interp.NewRunner("", nil), 0, nil).Probe(context.Background(), []string{
		"import os",
		"from noisy_mod import f",
		"import broken_mod",
		"import exiting_mod",
		"import invalid_mod",
		"import json",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"os", "f", "json"}, snap.Names())
	b, _ := snap.Lookup("f")
	assert.Equal(t, binding.Object{Name: "f", Module: "noisy_mod"}, b.Object)
}
