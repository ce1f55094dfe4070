package migration

import (
	"testing"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4/database/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStubMigrator(t *testing.T, fsys fstest.MapFS) *Migrator {
	t.Helper()
	src, err := FSSource(fsys)
	require.NoError(t, err)
	driver, err := (&stub.Stub{}).Open("stub://")
	require.NoError(t, err)

	m, err := NewWithDriver(src, "stub", driver, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func threeMigrations() fstest.MapFS {
	return fstest.MapFS{
		"1_members.up.sql":   {Data: []byte("CREATE TABLE members ();")},
		"1_members.down.sql": {Data: []byte("DROP TABLE members;")},
		"2_firms.up.sql":     {Data: []byte("CREATE TABLE firms ();")},
		"2_firms.down.sql":   {Data: []byte("DROP TABLE firms;")},
		"3_terms.up.sql":     {Data: []byte("CREATE TABLE terms ();")},
		"3_terms.down.sql":   {Data: []byte("DROP TABLE terms;")},
	}
}

func TestMigrator_UpAndVersion(t *testing.T) {
	m := newStubMigrator(t, threeMigrations())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())

	version, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
	assert.False(t, dirty)

	// a second run has nothing to do and is not an error
	assert.NoError(t, m.Up())
}

func TestMigrator_Pending(t *testing.T) {
	m := newStubMigrator(t, threeMigrations())

	pending, err := m.Pending()
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, pending)

	require.NoError(t, m.Steps(2))

	pending, err = m.Pending()
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, pending)
}

func TestMigrator_GoToAndDown(t *testing.T) {
	m := newStubMigrator(t, threeMigrations())

	require.NoError(t, m.GoTo(2))
	version, _, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	require.NoError(t, m.Steps(-1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestMigrator_Force(t *testing.T) {
	m := newStubMigrator(t, threeMigrations())

	require.NoError(t, m.Force(2))

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}

func TestEmbeddedSource_ListsSchemaVersions(t *testing.T) {
	src, err := EmbeddedSource()
	require.NoError(t, err)
	driver, err := (&stub.Stub{}).Open("stub://")
	require.NoError(t, err)
	m, err := NewWithDriver(src, "stub", driver, nil)
	require.NoError(t, err)
	defer m.Close()

	pending, err := m.Pending()
	require.NoError(t, err)
	assert.Equal(t, []uint{20260105090000, 20260105090100, 20260105090200}, pending)
}
