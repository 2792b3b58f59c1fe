package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMemoryDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: MemoryPath}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrator_RunMigrations(t *testing.T) {
	db := newMemoryDB(t)
	fsys := fstest.MapFS{
		"002_add_notes.sql":  {Data: []byte("ALTER TABLE widgets ADD COLUMN notes TEXT;")},
		"001_widgets.sql":    {Data: []byte("CREATE TABLE widgets (id TEXT PRIMARY KEY);")},
		"README.md":          {Data: []byte("ignored")},
		"sub/003_gadget.sql": {Data: []byte("CREATE TABLE gadgets (id TEXT PRIMARY KEY);")},
	}

	m := NewMigrator(db, zap.NewNop())
	require.NoError(t, m.RunMigrations(fsys))

	applied, err := m.AppliedVersions()
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, applied)

	_, err = db.Exec("INSERT INTO widgets (id, notes) VALUES ('a', 'b')")
	assert.NoError(t, err)

	t.Run("second run is a no-op", func(t *testing.T) {
		require.NoError(t, m.RunMigrations(fsys))
	})
}

func TestMigrator_FailedMigrationRollsBack(t *testing.T) {
	db := newMemoryDB(t)
	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE ok_table (id TEXT); CREATE TABL nope;")},
	}

	m := NewMigrator(db, zap.NewNop())
	err := m.RunMigrations(fsys)
	require.Error(t, err)

	applied, err := m.AppliedVersions()
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestLoadMigrations(t *testing.T) {
	t.Run("sorted with names", func(t *testing.T) {
		migrations, err := LoadMigrations(fstest.MapFS{
			"010_later.sql":   {Data: []byte("SELECT 1;")},
			"001_initial.sql": {Data: []byte("SELECT 1;")},
		})
		require.NoError(t, err)
		require.Len(t, migrations, 2)
		assert.Equal(t, 1, migrations[0].Version)
		assert.Equal(t, "initial", migrations[0].Name)
		assert.Equal(t, 10, migrations[1].Version)
	})

	t.Run("invalid filename", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{"initial.sql": {Data: []byte("SELECT 1;")}})
		assert.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"001_a.sql": {Data: []byte("SELECT 1;")},
			"001_b.sql": {Data: []byte("SELECT 1;")},
		})
		assert.Error(t, err)
	})
}
