package aggstate

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-distsql.v0/sql"
)

func testLayout() *Layout {
	return &Layout{
		Cells:  []sql.Type{sql.Text},
		States: []int{8},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "aggstate-")
	require.NoError(err)
	defer os.RemoveAll(dir)

	layout := testLayout()
	store, err := NewStore(dir, "spill-1", layout)
	require.NoError(err)
	require.Equal(layout, store.Layout())

	records := map[uint64]sql.Row{
		7: sql.NewRow("seven"),
		3: sql.NewRow("three"),
		5: sql.NewRow("five"),
	}

	for key, cells := range records {
		record, _, err := layout.Pack(cells)
		require.NoError(err)
		require.NoError(store.Put(key, record, nil))
	}

	n, err := store.Groups()
	require.NoError(err)
	require.Equal(3, n)

	var keys []uint64
	err = store.Range(func(key uint64, record []byte) error {
		keys = append(keys, key)

		cells, _, err := layout.Unpack(record)
		require.NoError(err)
		require.Equal(records[key], cells)
		return nil
	})
	require.NoError(err)
	require.Equal([]uint64{3, 5, 7}, keys)

	require.NoError(store.Close())

	ok, err := ExistsProcessingFile(filepath.Join(dir, "spill-1", ProcessingFileName))
	require.NoError(err)
	require.False(ok)

	cfg, err := ReadConfigFile(filepath.Join(dir, "spill-1", ConfigFileName))
	require.NoError(err)
	require.Equal("spill-1", cfg.ID)
}

func TestStorePutMerge(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "aggstate-")
	require.NoError(err)
	defer os.RemoveAll(dir)

	store, err := NewStore(dir, "spill-1", testLayout())
	require.NoError(err)
	defer func() {
		require.NoError(store.Close())
	}()

	require.NoError(store.Put(9, []byte("aa"), nil))

	var gotExisting, gotIncoming []byte
	err = store.Put(9, []byte("bb"), func(existing, incoming []byte) ([]byte, error) {
		gotExisting = existing
		gotIncoming = incoming
		return append(existing, incoming...), nil
	})
	require.NoError(err)
	require.Equal([]byte("aa"), gotExisting)
	require.Equal([]byte("bb"), gotIncoming)

	err = store.Range(func(key uint64, record []byte) error {
		require.Equal(uint64(9), key)
		require.Equal([]byte("aabb"), record)
		return nil
	})
	require.NoError(err)
}

func TestStoreDirty(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "aggstate-")
	require.NoError(err)
	defer os.RemoveAll(dir)

	store, err := NewStore(dir, "spill-1", testLayout())
	require.NoError(err)

	// The spill is open, so a second owner must refuse it.
	_, err = NewStore(dir, "spill-1", testLayout())
	require.Error(err)
	require.True(ErrSpillDirty.Is(err))

	require.NoError(store.Close())

	store, err = NewStore(dir, "spill-1", testLayout())
	require.NoError(err)
	require.NoError(store.Close())
}

func TestStoreRecords(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "aggstate-")
	require.NoError(err)
	defer os.RemoveAll(dir)

	store, err := NewStore(dir, "spill-1", testLayout())
	require.NoError(err)
	defer func() {
		require.NoError(store.Close())
	}()

	require.NoError(store.Put(2, []byte("two"), nil))
	require.NoError(store.Put(1, []byte("one"), nil))

	iter, err := store.Records()
	require.NoError(err)

	key, record, err := iter.Next()
	require.NoError(err)
	require.Equal(uint64(1), key)
	require.Equal([]byte("one"), record)

	key, record, err = iter.Next()
	require.NoError(err)
	require.Equal(uint64(2), key)
	require.Equal([]byte("two"), record)

	_, _, err = iter.Next()
	require.Equal(io.EOF, err)
	require.NoError(iter.Close())

	// The copies returned by the iterator outlive its transaction.
	require.Equal([]byte("two"), record)
}
