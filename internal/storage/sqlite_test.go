package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"importlens/internal/index"
	"importlens/internal/verify"
)

var _ verify.ResultStore = (*SQLiteStore)(nil)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveReport_SnapshotSync(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// Initial snapshot: a.py and b.py
	require.NoError(t, store.SaveReport(ctx, &index.Report{Root: "src", Files: []index.FileReport{
		{Path: "a.py", Statements: []string{"import os"}},
		{Path: "b.py", Statements: []string{"import numpy as np", "from math import floor"}, Unresolved: 1},
	}}))

	// New snapshot: a.py removed, c.py added, b.py changed.
	require.NoError(t, store.SaveReport(ctx, &index.Report{Root: "src2", Files: []index.FileReport{
		{Path: "c.py", Statements: []string{"from json import *"}},
		{Path: "b.py", Statements: []string{"import numpy as np"}},
	}}))

	loaded, err := store.LoadReport(ctx)
	require.NoError(t, err)

	assert.Equal(t, &index.Report{Root: "src2", Files: []index.FileReport{
		{Path: "b.py", Statements: []string{"import numpy as np"}},
		{Path: "c.py", Statements: []string{"from json import *"}},
	}}, loaded)
}

func TestSQLiteStore_SaveReport_EmptySnapshotClearsData(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveReport(ctx, &index.Report{Files: []index.FileReport{{Path: "x.py", Statements: []string{"import os"}}}}))
	require.NoError(t, store.SaveReport(ctx, &index.Report{}))

	loaded, err := store.LoadReport(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Files)
}

func TestSQLiteStore_LoadReport_Empty(t *testing.T) {
	loaded, err := newStore(t).LoadReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &index.Report{}, loaded)
}

func TestSQLiteStore_Verifications(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVerifications(ctx, "python3", map[string]bool{
		"import os":          true,
		"import nothing":     false,
		"from json import *": true,
	}))
	require.NoError(t, store.SaveVerifications(ctx, "python2", map[string]bool{"import os": false}))

	got, err := store.LookupVerifications(ctx, "python3", []string{"import os", "import nothing", "import sys"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"import os": true, "import nothing": false}, got)

	got, err = store.LookupVerifications(ctx, "python2", []string{"import os", "import nothing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"import os": false}, got)

	// Outcomes are overwritten.
	require.NoError(t, store.SaveVerifications(ctx, "python3", map[string]bool{"import nothing": true}))
	got, err = store.LookupVerifications(ctx, "python3", []string{"import nothing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"import nothing": true}, got)
}

func TestSQLiteStore_VerificationsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveVerifications(ctx, "python3", map[string]bool{"import os": true}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Zero(t, reopened.cache.Len())
	got, err := reopened.LookupVerifications(ctx, "python3", []string{"import os"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"import os": true}, got)
	assert.Equal(t, 1, reopened.cache.Len())
}

func TestSQLiteStore_VerificationsExpire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()
	clock := time.Unix(1_700_000_000, 0)

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	store.now = func() time.Time { return clock }
	store.SetVerificationTTL(time.Hour)

	require.NoError(t, store.SaveVerifications(ctx, "python3", map[string]bool{"import os": true}))

	clock = clock.Add(59 * time.Minute)
	got, err := store.LookupVerifications(ctx, "python3", []string{"import os"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"import os": true}, got)

	// Expired outcomes are hidden in memory and on disk.
	clock = clock.Add(2 * time.Minute)
	got, err = store.LookupVerifications(ctx, "python3", []string{"import os"})
	require.NoError(t, err)
	assert.Empty(t, got)

	store.cache.Purge()
	got, err = store.LookupVerifications(ctx, "python3", []string{"import os"})
	require.NoError(t, err)
	assert.Empty(t, got)

	store.SetVerificationTTL(0)
	got, err = store.LookupVerifications(ctx, "python3", []string{"import os"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"import os": true}, got)
}
