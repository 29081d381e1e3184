package vault

import (
	"context"
	"iter"

	"github.com/cuemby/mdvault/pkg/metrics"
	"github.com/cuemby/mdvault/pkg/types"
)

// Iter yields every (key, item) pair held in the in-memory cache. It never
// fails and performs no I/O; the cache is replaced (not mutated) on commit.
func (s *Store[T]) Iter() iter.Seq2[types.FileKey, T] {
	return func(yield func(types.FileKey, T) bool) {
		for _, e := range s.cache {
			if !yield(e.Key, e.Item) {
				return
			}
		}
	}
}

// DiskIter opens a fresh read transaction against the database file and
// returns a sequence of decoded (key, item) pairs plus a closer the caller
// must invoke when done iterating. Undecodable values are logged and
// skipped rather than failing the iteration.
func (s *Store[T]) DiskIter(ctx context.Context) (iter.Seq2[types.FileKey, T], func() error, error) {
	txn, err := s.txStore.OpenDiskTxn()
	if err != nil {
		return nil, nil, err
	}

	seq := func(yield func(types.FileKey, T) bool) {
		_ = txn.Each(func(k types.FileKey, item T) bool {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			metrics.DiskIterItemsTotal.Inc()
			return yield(k, item)
		})
	}
	return seq, txn.Close, nil
}

// Values is disk iteration projecting the item only.
func (s *Store[T]) Values(ctx context.Context) ([]T, error) {
	seq, closeFn, err := s.DiskIter(ctx)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var out []T
	seq(func(_ types.FileKey, item T) bool {
		out = append(out, item)
		return true
	})
	return out, nil
}

// Keys is disk iteration projecting the keys, each file key reported once.
// Like the other disk iteration paths it skips undecodable values, so a key
// whose main-table value cannot be decoded is not reported.
func (s *Store[T]) Keys(ctx context.Context) ([]types.FileKey, error) {
	txn, err := s.txStore.OpenDiskTxn()
	if err != nil {
		return nil, err
	}
	defer txn.Close()

	var out []types.FileKey
	_ = txn.Each(func(k types.FileKey, _ T) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		// Each yields in key order, so a repeated key is always adjacent.
		if n := len(out); n == 0 || out[n-1] != k {
			out = append(out, k)
		}
		return true
	})
	return out, nil
}

// Fold folds every (key, item) pair from disk iteration into an
// accumulator, short-circuiting and returning the codec error on the first
// undecodable structural value. A is the accumulator's type; Fold is a free
// function (rather than a method) because a method cannot introduce a type
// parameter beyond the receiver's.
func Fold[T, A any](ctx context.Context, s *Store[T], init A, f func(acc A, key types.FileKey, item T) A) (A, error) {
	txn, err := s.txStore.OpenDiskTxn()
	if err != nil {
		return init, err
	}
	defer txn.Close()

	acc := init
	err = txn.EachStrict(func(k types.FileKey, item T) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		acc = f(acc, k, item)
		return true
	})
	return acc, err
}

// MapFn collects disk iteration into a sequence of f(key, item). Like
// Fold, a codec error on the underlying main-table value is fatal; in
// addition, any error f itself returns also propagates immediately and
// aborts the iteration.
func MapFn[T, V any](ctx context.Context, s *Store[T], f func(key types.FileKey, item T) (V, error)) ([]V, error) {
	txn, err := s.txStore.OpenDiskTxn()
	if err != nil {
		return nil, err
	}
	defer txn.Close()

	var out []V
	var ferr error
	codecErr := txn.EachStrict(func(k types.FileKey, item T) bool {
		select {
		case <-ctx.Done():
			ferr = ctx.Err()
			return false
		default:
		}
		v, err := f(k, item)
		if err != nil {
			ferr = err
			return false
		}
		out = append(out, v)
		return true
	})
	if codecErr != nil {
		return nil, codecErr
	}
	if ferr != nil {
		return nil, ferr
	}
	return out, nil
}
