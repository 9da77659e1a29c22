package sqldataset_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pbanos/thicket/dataset/sqldataset"
	"github.com/pbanos/thicket/dataset/sqldataset/pgadapter"
	"github.com/pbanos/thicket/dataset/sqldataset/sqlite3adapter"
	"github.com/pbanos/thicket/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) sqldataset.Adapter {
	t.Helper()
	a, err := sqlite3adapter.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	_, err = a.DB().Exec(`CREATE TABLE records (size INTEGER, weight REAL, class TEXT)`)
	require.NoError(t, err)
	_, err = a.DB().Exec(`INSERT INTO records VALUES (1, 0.5, 'small'), (7, 3.25, 'big'), (2, 0.75, 'small')`)
	require.NoError(t, err)
	return a
}

func TestReadTable(t *testing.T) {
	a := openSQLite(t)
	ds, err := sqldataset.ReadTable(context.Background(), a, "records", "class")
	require.NoError(t, err)
	require.Equal(t, 3, ds.Count())
	assert.Equal(t, 2, ds.FieldCount())
	assert.Equal(t, feature.Int, ds.FieldKind(0))
	assert.Equal(t, feature.Float, ds.FieldKind(1))
	r := ds.Record(1)
	assert.Equal(t, "big", r.Label())
	assert.Equal(t, feature.IntValue(7), r.ValueAt(0))
	assert.Equal(t, feature.FloatValue(3.25), r.ValueAt(1))
}

func TestRead(t *testing.T) {
	a := openSQLite(t)
	ds, err := sqldataset.Read(context.Background(), a.DB(), "SELECT size, class FROM records WHERE size > 1", "class")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Count())
	assert.Equal(t, 1, ds.FieldCount())

	ds, err = sqldataset.Read(context.Background(), a.DB(), "SELECT weight, size FROM records", "size")
	require.NoError(t, err)
	assert.Equal(t, "7", ds.Record(1).Label())
}

func TestReadErrors(t *testing.T) {
	a := openSQLite(t)
	ctx := context.Background()
	_, err := sqldataset.Read(ctx, a.DB(), "SELECT * FROM records", "label")
	assert.Error(t, err)
	_, err = sqldataset.Read(ctx, a.DB(), "SELECT * FROM missing", "class")
	assert.Error(t, err)
	_, err = sqldataset.Read(ctx, a.DB(), "SELECT size, NULL AS weight, class FROM records", "class")
	assert.Error(t, err)
	_, err = sqldataset.Read(ctx, a.DB(), "SELECT * FROM records WHERE size > 100", "class")
	assert.Error(t, err)
	_, err = sqldataset.ReadTable(ctx, a, `bad"name`, "class")
	assert.Error(t, err)
}

func TestPostgresColumnName(t *testing.T) {
	// sql.Open does not connect, so no server is needed
	a, err := pgadapter.Open("postgres://localhost/thicket?sslmode=disable")
	require.NoError(t, err)
	defer a.Close()
	name, err := a.ColumnName(`weird"table`)
	require.NoError(t, err)
	assert.Equal(t, `"weird""table"`, name)
	_, err = a.ColumnName("")
	assert.Error(t, err)
}
