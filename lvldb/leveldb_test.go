// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	fileDB, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{16, 16})
	require.NoError(t, err)
	defer fileDB.Close()

	memDB, err := NewMem()
	require.NoError(t, err)
	defer memDB.Close()

	for _, db := range []*LevelDB{fileDB, memDB} {
		assert.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		assert.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDBBulk(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bulk := db.Bulk()
	assert.NoError(t, bulk.Put([]byte("k1"), []byte("v1")))
	assert.NoError(t, bulk.Put([]byte("k2"), []byte("v2")))
	assert.Equal(t, 2, bulk.Len())

	// nothing visible before write
	_, err = db.Get([]byte("k1"))
	assert.True(t, db.IsNotFound(err))

	assert.NoError(t, bulk.Write())
	assert.Equal(t, 0, bulk.Len())

	got, err := db.Get([]byte("k2"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestLevelDBBucketIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	store := kv.Bucket("b").NewStore(db)
	assert.NoError(t, store.Put([]byte("1"), []byte("a")))
	assert.NoError(t, store.Put([]byte("2"), []byte("b")))
	assert.NoError(t, db.Put([]byte("c3"), []byte("other bucket")))

	iter := store.Iterate(kv.Range{})
	defer iter.Release()

	var keys, values []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
		values = append(values, string(iter.Value()))
	}
	assert.NoError(t, iter.Error())
	assert.Equal(t, []string{"1", "2"}, keys)
	assert.Equal(t, []string{"a", "b"}, values)
}
