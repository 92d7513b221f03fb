package aggstate

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	errors "gopkg.in/src-d/go-errors.v1"
)

const (
	// DBFileName is the name of the database file of a spill.
	DBFileName = "spill.db"
	// ConfigFileName is the name of a spill config file.
	ConfigFileName = "config.yml"
	// ProcessingFileName is the name of the lock file held while a spill
	// is open.
	ProcessingFileName = ".processing"
)

// ErrSpillDirty is returned when opening a spill whose previous owner
// did not close it cleanly, so its contents cannot be trusted.
var ErrSpillDirty = errors.NewKind("spill %q was not closed cleanly")

var groupsBucket = []byte("groups")

// MergeFunc combines the record already stored for a group with an
// incoming record for the same group. Both slices are owned by the
// callback and the returned slice replaces the stored record.
type MergeFunc func(existing, incoming []byte) ([]byte, error)

// Store keeps packed partial aggregation state on disk, one record per
// group hash.
type Store struct {
	dir    string
	id     string
	layout *Layout
	db     *bolt.DB
}

// NewStore creates the on-disk layout of one spill under dir: a
// directory named after id holding the database, a yaml descriptor of
// the record layout and a processing marker removed on clean close. A
// marker left behind by a previous owner makes it fail with
// ErrSpillDirty.
func NewStore(dir, id string, layout *Layout) (*Store, error) {
	path := filepath.Join(dir, id)
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, err
	}

	processing := filepath.Join(path, ProcessingFileName)
	ok, err := ExistsProcessingFile(processing)
	if err != nil {
		return nil, err
	}

	if ok {
		return nil, ErrSpillDirty.New(id)
	}

	if err := CreateProcessingFile(processing); err != nil {
		return nil, err
	}

	err = WriteConfigFile(filepath.Join(path, ConfigFileName), NewConfig(id, layout))
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(path, DBFileName), 0640, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(groupsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{dir: dir, id: id, layout: layout, db: db}, nil
}

// Layout returns the record layout of the store.
func (s *Store) Layout() *Layout {
	return s.layout
}

// Put stores the record under the given group hash. When the group
// already holds a record, merge decides the record kept.
func (s *Store) Put(key uint64, record []byte, merge MergeFunc) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(groupsBucket)

		// Big endian so the cursor walks groups in ascending hash order.
		k := make([]byte, 8)
		binary.BigEndian.PutUint64(k, key)

		if existing := b.Get(k); existing != nil {
			// Get returns memory owned by the transaction.
			prev := make([]byte, len(existing))
			copy(prev, existing)

			var err error
			record, err = merge(prev, record)
			if err != nil {
				return err
			}
		}

		return b.Put(k, record)
	})
}

// Range calls f once per stored group, in ascending group hash order.
// The record slice is only valid for the duration of the call.
func (s *Store) Range(f func(key uint64, record []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(groupsBucket).ForEach(func(k, v []byte) error {
			return f(binary.BigEndian.Uint64(k), v)
		})
	})
}

// Records returns an iterator over the stored records in ascending
// group hash order. The iterator holds a read transaction open until
// it is closed, so no Put can happen while it lives.
func (s *Store) Records() (*RecordIter, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, err
	}

	return &RecordIter{tx: tx, cursor: tx.Bucket(groupsBucket).Cursor()}, nil
}

// RecordIter iterates the records of a store in ascending group hash
// order.
type RecordIter struct {
	tx      *bolt.Tx
	cursor  *bolt.Cursor
	started bool
}

// Next returns the next group hash and record. It returns io.EOF after
// the last one. The record is a copy and stays valid after Close.
func (i *RecordIter) Next() (uint64, []byte, error) {
	var k, v []byte
	if !i.started {
		k, v = i.cursor.First()
		i.started = true
	} else {
		k, v = i.cursor.Next()
	}

	if k == nil {
		return 0, nil, io.EOF
	}

	record := make([]byte, len(v))
	copy(record, v)
	return binary.BigEndian.Uint64(k), record, nil
}

// Close releases the read transaction held by the iterator.
func (i *RecordIter) Close() error {
	return i.tx.Rollback()
}

// Groups returns the number of groups currently stored.
func (s *Store) Groups() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(groupsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the database and removes the processing marker. The
// database and descriptor files are left for the owner of dir to clean
// up or inspect.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}

	return RemoveProcessingFile(filepath.Join(s.dir, s.id, ProcessingFileName))
}
