package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBSemantics(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	got, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.Nil(t, got)

	value := []byte("v1")
	require.NoError(t, db.Put([]byte("k"), value))

	// Stored bytes are insulated from later mutation of the caller's slice.
	value[0] = 'x'
	got, err = db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	// And the returned slice is a copy too.
	got[0] = 'y'
	again, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), again)

	require.NoError(t, db.Delete([]byte("k")))
	got, err = db.Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db1, err := NewLevelDB(dir)
	require.NoError(t, err)
	require.NoError(t, db1.Put([]byte("k"), []byte("v1")))
	require.NoError(t, db1.Close())

	db2, err := NewLevelDB(dir)
	require.NoError(t, err)
	defer db2.Close()

	got, err := db2.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	missing, err := db2.Get([]byte("absent"))
	require.NoError(t, err)
	require.Nil(t, missing)
}
