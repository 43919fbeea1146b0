package verify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"importlens/internal/interp"
)

type fakeRunner struct {
	calls [][]string
	out   interp.Output
	err   error
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, _ string, args ...string) (interp.Output, error) {
	f.calls = append(f.calls, args)
	return f.out, f.err
}

func (f *fakeRunner) Interpreter() string { return "fake" }

func pythonVerifier(t *testing.T, opts Options) *Verifier {
	t.Helper()
	if _, err := exec.LookPath(interp.DefaultPython); err != nil {
		t.Skip("python3 not available")
	}
	return New(interp.NewRunner("", nil), opts, nil)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.False(t, opts.Verbose)
	assert.Same(t, os.Stdout, opts.Out)
}

func TestVerify_EmptyInputSpawnsNothing(t *testing.T) {
	runner := &fakeRunner{}
	res, err := New(runner, DefaultOptions(), nil).Verify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Invalid)
	assert.True(t, res.Verified())
	assert.Empty(t, runner.calls)
}

func TestVerify_StatementsTravelAsArgs(t *testing.T) {
	runner := &fakeRunner{out: interp.Output{Stdout: "import dummy\n"}}
	stmts := []string{"import os", "import dummy"}

	res, err := New(runner, DefaultOptions(), nil).Verify(context.Background(), stmts)
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, stmts, runner.calls[0])
	assert.Equal(t, []string{"import dummy"}, res.Invalid)
	assert.Equal(t, []string{"import os"}, res.Valid(stmts))
}

func TestVerify_TimeoutReturnsInput(t *testing.T) {
	runner := &fakeRunner{err: interp.ErrTimeout}
	stmts := []string{"import os", "import sys"}

	res, err := New(runner, Options{Timeout: 0}, nil).Verify(context.Background(), stmts)
	require.NoError(t, err)
	assert.Equal(t, stmts, res.Invalid)
	assert.False(t, res.Verified())

	var warning *TimeoutWarning
	require.True(t, errors.As(res.Warning, &warning))
	assert.Contains(t, warning.Error(), "timed out")
}

func TestVerify_HarnessFailureIsAnError(t *testing.T) {
	runner := &fakeRunner{err: &interp.ExitError{Code: 1, Stderr: "SyntaxError: invalid syntax"}}
	_, err := New(runner, DefaultOptions(), nil).Verify(context.Background(), []string{"import os as"})
	var exitErr *interp.ExitError
	require.True(t, errors.As(err, &exitErr))
}

func TestVerify_VerboseOutput(t *testing.T) {
	var buf bytes.Buffer
	runner := &fakeRunner{out: interp.Output{Stdout: "import dummy\n"}}
	v := New(runner, Options{Timeout: time.Second, Verbose: true, Out: &buf}, nil)

	_, err := v.Verify(context.Background(), []string{"import dummy"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Verifying the import statements...")
	assert.Contains(t, buf.String(), "# import dummy")

	buf.Reset()
	runner.out = interp.Output{}
	_, err = v.Verify(context.Background(), []string{"import os"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "--- All imports are verified ---")
}

func TestVerify_Python(t *testing.T) {
	defer goleak.VerifyNone(t)
	v := pythonVerifier(t, DefaultOptions())
	ctx := context.Background()

	cases := []struct {
		name  string
		stmts []string
		want  []string
	}{
		{"valid", []string{"import os"}, nil},
		{"missing module", []string{"import definitely_missing_module_x"}, []string{"import definitely_missing_module_x"}},
		{"mixed", []string{"import os", "import dummy", "from os import dummy"}, []string{"import dummy", "from os import dummy"}},
		{"not a real submodule", []string{"import os.getcwd as getcwd"}, []string{"import os.getcwd as getcwd"}},
		{"aliases do not leak between statements", []string{"import os as o", "from o import path"}, []string{"from o import path"}},
		{"common stdlib", []string{
			"import bisect",
			"import collections",
			"from bisect import insort_right as insort",
			"from builtins import OSError as EnvironmentError",
			"from json.decoder import JSONDecoder, JSONDecodeError",
			"from string import capwords, Formatter, Template",
		}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := v.Verify(ctx, tc.stmts)
			require.NoError(t, err)
			assert.True(t, res.Verified())
			assert.Equal(t, tc.want, res.Invalid)
		})
	}
}

func TestVerify_PythonTimeout(t *testing.T) {
	v := pythonVerifier(t, Options{Timeout: 0})
	stmts := []string{"import os", "import sys"}

	res, err := v.Verify(context.Background(), stmts)
	require.NoError(t, err)
	assert.Equal(t, stmts, res.Invalid)
	assert.IsType(t, &TimeoutWarning{}, res.Warning)
}

func TestVerify_PythonSyntaxError(t *testing.T) {
	v := pythonVerifier(t, DefaultOptions())
	_, err := v.Verify(context.Background(), []string{"import os as"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "SyntaxError"), err.Error())
}
