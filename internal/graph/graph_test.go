package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"importlens/internal/index"
)

func TestParseStatement(t *testing.T) {
	cases := []struct {
		stmt   string
		module string
		kind   RelationKind
		ok     bool
	}{
		{"import numpy", "numpy", RelationImports, true},
		{"import matplotlib.pyplot as plt", "matplotlib.pyplot", RelationImports, true},
		{"from math import floor, ceil", "math", RelationImportsFrom, true},
		{"from bisect import insort_right as insort", "bisect", RelationImportsFrom, true},
		{"from json import *", "json", RelationWildcard, true},
		{"# Objects are shown as '*' if more than 3", "", "", false},
		{"from json", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		module, kind, ok := ParseStatement(tc.stmt)
		assert.Equal(t, tc.ok, ok, tc.stmt)
		assert.Equal(t, tc.module, module, tc.stmt)
		assert.Equal(t, tc.kind, kind, tc.stmt)
	}
}

func TestGraph_FromReport(t *testing.T) {
	report := &index.Report{Files: []index.FileReport{
		{Path: "a.py", Statements: []string{"import numpy as np", "from math import floor", "from math import ceil as c"}},
		{Path: "b.py", Statements: []string{"import os", "from numpy import *"}},
		{Path: "c.py", Statements: []string{"import numpy"}},
	}}

	g := FromReport(report)

	t.Run("Importers", func(t *testing.T) {
		assert.Equal(t, []string{"a.py", "b.py", "c.py"}, g.Importers("numpy"))
		assert.Equal(t, []string{"a.py"}, g.Importers("math"))
		assert.Empty(t, g.Importers("scipy"))
	})

	t.Run("Dependencies", func(t *testing.T) {
		assert.Equal(t, []string{"math", "numpy"}, g.Dependencies("a.py"))
	})

	t.Run("Ranking", func(t *testing.T) {
		modules := g.Modules()
		var names []string
		for _, m := range modules {
			names = append(names, m.Module)
		}
		assert.Equal(t, []string{"numpy", "math", "os"}, names)
		assert.Len(t, modules[0].Importers, 3)
	})

	t.Run("Wildcards", func(t *testing.T) {
		assert.Equal(t, []Edge{{From: "b.py", To: "numpy", Kind: RelationWildcard}}, g.Wildcards())
	})

	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, g.Files)
}
