package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/mdvault/pkg/log"
	"github.com/cuemby/mdvault/pkg/metrics"
	"github.com/cuemby/mdvault/pkg/types"
	bolt "go.etcd.io/bbolt"
)

// DBName is the on-disk database file, created directly under a store's
// root directory.
const DBName = "oxide.db"

// schemaTag is embedded in the state table on the first commit and checked
// by every later ApplySync, so that committing into a database written by an
// incompatible codec version fails instead of silently misinterpreting
// bytes — the Go analogue of redb's type-name schema check.
const schemaTag = "mdvault.FileState.v1"

var (
	mainTableBucket  = []byte("main-table")
	stateTableBucket = []byte("state-table")
	schemaKey        = []byte("__schema__")
)

// mainTableName labels codec-error metrics; kept distinct from the bucket
// key bytes above since prometheus label values must be plain strings.
const mainTableName = "main-table"

// Update is one file's contribution to a commit: the stamp observed by the
// scanner and the ordered item sequence produced by the pipeline.
type Update[T any] struct {
	State types.FileState
	Items []T
}

// Entry pairs a decoded item with the file key it was derived from.
type Entry[T any] struct {
	Key  types.FileKey
	Item T
}

// BoltStore is the component D transaction layer: a single bbolt database
// holding the main table and state table described in spec.md §4.D, generic
// over the item type T it stores.
type BoltStore[T any] struct {
	dir string
}

// NewBoltStore returns a transaction layer rooted at dir. It does not touch
// the filesystem; the database file is created lazily on the first commit.
func NewBoltStore[T any](dir string) *BoltStore[T] {
	return &BoltStore[T]{dir: dir}
}

func (s *BoltStore[T]) path() string {
	return filepath.Join(s.dir, DBName)
}

// State reads the persisted (key, state) set. A missing database file is
// not an error — spec.md §7 treats it as empty prior state — and reports as
// (nil, nil).
func (s *BoltStore[T]) State() (map[types.FileKey]types.FileState, error) {
	db, err := bolt.Open(s.path(), 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open for state read: %v", types.ErrTransaction, err)
	}
	defer db.Close()

	result := make(map[types.FileKey]types.FileState)
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateTableBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if string(k) == string(schemaKey) {
				return nil
			}
			state, derr := decodeFileState(v)
			if derr != nil {
				return derr
			}
			result[string(k)] = state
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read state table: %v", types.ErrTransaction, err)
	}
	return result, nil
}

// ApplySync is the commit procedure of spec.md §4.D: every update is
// encoded and written to both tables, every delete is removed from both,
// all inside one bbolt write transaction so the result is all-or-nothing
// with respect to invariant 3.
func (s *BoltStore[T]) ApplySync(updates map[types.FileKey]Update[T], deletes []types.FileKey) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create root directory: %v", types.ErrTransaction, err)
	}

	db, err := bolt.Open(s.path(), 0o600, nil)
	if err != nil {
		return fmt.Errorf("%w: open database: %v", types.ErrTransaction, err)
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		mainB, err := tx.CreateBucketIfNotExists(mainTableBucket)
		if err != nil {
			return err
		}
		stateB, err := tx.CreateBucketIfNotExists(stateTableBucket)
		if err != nil {
			return err
		}

		if tag := stateB.Get(schemaKey); tag == nil {
			if err := stateB.Put(schemaKey, []byte(schemaTag)); err != nil {
				return err
			}
		} else if string(tag) != schemaTag {
			return fmt.Errorf("database schema %q does not match %q", tag, schemaTag)
		}

		for key, update := range updates {
			encoded := make([][]byte, 0, len(update.Items))
			for _, item := range update.Items {
				raw, err := encodeItem(item)
				if err != nil {
					return fmt.Errorf("encode item for %q: %w", key, err)
				}
				encoded = append(encoded, raw)
			}
			if err := mainB.Put([]byte(key), encodeItemSequence(encoded)); err != nil {
				return err
			}
			if err := stateB.Put([]byte(key), encodeFileState(update.State)); err != nil {
				return err
			}
		}

		for _, key := range deletes {
			if err := mainB.Delete([]byte(key)); err != nil {
				return err
			}
			if err := stateB.Delete([]byte(key)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: commit: %v", types.ErrTransaction, err)
	}
	return nil
}

// Snapshot reads every (key, item) pair from the main table in one read
// transaction. It is the primitive the cache rebuild (component E) uses;
// DiskIter reads through OpenDiskTxn instead. Undecodable values are logged
// and skipped, matching
// spec.md §4.E's "undecodable values are logged and skipped (not fatal)".
func (s *BoltStore[T]) Snapshot() ([]Entry[T], error) {
	db, err := bolt.Open(s.path(), 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open for snapshot: %v", types.ErrTransaction, err)
	}
	defer db.Close()

	var entries []Entry[T]
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(mainTableBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			key := string(k)
			seq, derr := decodeItemSequence(v)
			if derr != nil {
				log.Logger.Warn().Str("file_key", key).Err(derr).Msg("skipping undecodable main-table value")
				metrics.CodecErrorsTotal.WithLabelValues(mainTableName).Inc()
				return nil
			}
			for _, raw := range seq {
				item, ierr := decodeItem[T](raw)
				if ierr != nil {
					log.Logger.Warn().Str("file_key", key).Err(ierr).Msg("skipping undecodable item")
					metrics.CodecErrorsTotal.WithLabelValues(mainTableName).Inc()
					continue
				}
				entries = append(entries, Entry[T]{Key: key, Item: item})
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read main table: %v", types.ErrTransaction, err)
	}
	return entries, nil
}

// DiskTxn is a live read transaction over the main table, used by the
// uncached iteration path (disk-iter) of spec.md §4.E. The transaction stays
// open for the iterator's lifetime; callers must call Close.
type DiskTxn[T any] struct {
	db     *bolt.DB
	tx     *bolt.Tx
	cursor *bolt.Cursor
}

// OpenDiskTxn begins a fresh read transaction. A missing database file
// yields an already-exhausted iterator rather than an error, consistent
// with "Missing-database ... not an error" (spec.md §7).
func (s *BoltStore[T]) OpenDiskTxn() (*DiskTxn[T], error) {
	db, err := bolt.Open(s.path(), 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &DiskTxn[T]{}, nil
		}
		return nil, fmt.Errorf("%w: open for disk iteration: %v", types.ErrTransaction, err)
	}

	tx, err := db.Begin(false)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: begin read transaction: %v", types.ErrTransaction, err)
	}

	txn := &DiskTxn[T]{db: db, tx: tx}
	if b := tx.Bucket(mainTableBucket); b != nil {
		txn.cursor = b.Cursor()
	}
	return txn, nil
}

// Each decodes and yields every (key, item) pair in key order. A codec
// failure, whether in the sequence or a single item, is logged, counted,
// and skipped rather than returned — this is the cached/disk iteration
// path's "per-item skip" behavior. See EachStrict for the fold/map path,
// where the same failure is fatal.
func (t *DiskTxn[T]) Each(yield func(types.FileKey, T) bool) error {
	if t.cursor == nil {
		return nil
	}
	for k, v := t.cursor.First(); k != nil; k, v = t.cursor.Next() {
		key := string(k)
		seq, err := decodeItemSequence(v)
		if err != nil {
			log.Logger.Warn().Str("file_key", key).Err(err).Msg("skipping undecodable main-table value")
			metrics.CodecErrorsTotal.WithLabelValues(mainTableName).Inc()
			continue
		}
		for _, raw := range seq {
			item, ierr := decodeItem[T](raw)
			if ierr != nil {
				log.Logger.Warn().Str("file_key", key).Err(ierr).Msg("skipping undecodable item")
				metrics.CodecErrorsTotal.WithLabelValues(mainTableName).Inc()
				continue
			}
			if !yield(key, item) {
				return nil
			}
		}
	}
	return nil
}

// EachStrict behaves like Each but treats any codec failure as fatal: it
// stops iterating and returns types.ErrCodec instead of logging, counting,
// and skipping the bad entry. Fold and MapFn use this instead of Each
// because spec.md requires fold/map to propagate codec errors rather than
// silently drop them, unlike the cached/disk iteration paths.
func (t *DiskTxn[T]) EachStrict(yield func(types.FileKey, T) bool) error {
	if t.cursor == nil {
		return nil
	}
	for k, v := t.cursor.First(); k != nil; k, v = t.cursor.Next() {
		key := string(k)
		seq, err := decodeItemSequence(v)
		if err != nil {
			return fmt.Errorf("%w: file %q: %v", types.ErrCodec, key, err)
		}
		for _, raw := range seq {
			item, ierr := decodeItem[T](raw)
			if ierr != nil {
				return fmt.Errorf("%w: file %q: %v", types.ErrCodec, key, ierr)
			}
			if !yield(key, item) {
				return nil
			}
		}
	}
	return nil
}

// Keys yields every distinct file key in the main table without decoding
// any item.
func (t *DiskTxn[T]) Keys(yield func(types.FileKey) bool) {
	if t.cursor == nil {
		return
	}
	for k, _ := t.cursor.First(); k != nil; k, _ = t.cursor.Next() {
		if !yield(string(k)) {
			return
		}
	}
}

// Close releases the underlying read transaction and database handle.
func (t *DiskTxn[T]) Close() error {
	var err error
	if t.tx != nil {
		err = t.tx.Rollback()
	}
	if t.db != nil {
		if cerr := t.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
