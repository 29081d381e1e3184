package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/cuemby/mdvault/pkg/log"
	"github.com/cuemby/mdvault/pkg/metrics"
	"github.com/cuemby/mdvault/pkg/storage"
	"github.com/cuemby/mdvault/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// entry is one (key, state, carrier) binding as it flows through the
// pipeline; key+state stay fixed across stages, only the carrier changes
// type.
type entry[U any] struct {
	key     types.FileKey
	state   types.FileState
	carrier U
}

// Sync is a typed in-flight transformation chain: U is the carrier type at
// this stage, T is the store's item type. Commit is only callable once
// U == T, which Go expresses by Commit accepting exclusively *Sync[T, T].
type Sync[U, T any] struct {
	store   *Store[T]
	id      string
	entries []entry[U]
	deletes []types.FileKey
}

// ID returns the session's correlation ID, used to tie together every log
// line a single sync produces.
func (sy *Sync[U, T]) ID() string {
	return sy.id
}

// Len reports how many (key, carrier) bindings are currently in flight.
func (sy *Sync[U, T]) Len() int {
	return len(sy.entries)
}

// BeginSync scans the store's root, diffs it against the persisted state
// table, and returns a session whose carrier starts at the unit type —
// nothing has been read from any file yet.
func BeginSync[T any](s *Store[T]) (*Sync[struct{}, T], error) {
	id := uuid.NewString()
	slog := log.WithSyncID(id)

	scanned, err := scan(s.root, s.scanCfg)
	if err != nil {
		return nil, fmt.Errorf("scan root directory: %w", err)
	}

	prior, err := s.txStore.State()
	if err != nil {
		return nil, err
	}

	updates, deletes := diff(scanned, prior)

	entries := make([]entry[struct{}], 0, len(updates))
	for k, st := range updates {
		entries = append(entries, entry[struct{}]{key: k, state: st})
	}

	slog.Info().Int("updates", len(entries)).Int("deletes", len(deletes)).Msg("sync begun")

	return &Sync[struct{}, T]{store: s, id: id, entries: entries, deletes: deletes}, nil
}

// Populate reads every update's file contents concurrently and hands each
// (key, contents) pair to f, replacing the carrier with f's result. A read
// or f failure is logged and the update dropped, except a read failure that
// is specifically "file does not exist": that key is instead folded into
// this session's deletes, without a warning, since a file that vanished
// between scan and populate should not linger as a stale entry.
func Populate[U, V, T any](ctx context.Context, sy *Sync[U, T], f func(ctx context.Context, key types.FileKey, contents []byte) (V, error)) (*Sync[V, T], error) {
	slog := log.WithSyncID(sy.id)

	results := make([]*entry[V], len(sy.entries))
	var mu sync.Mutex
	extraDeletes := make([]types.FileKey, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, e := range sy.entries {
		i, e := i, e
		g.Go(func() error {
			contents, err := os.ReadFile(filepath.Join(sy.store.root, string(e.key)))
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					mu.Lock()
					extraDeletes = append(extraDeletes, e.key)
					mu.Unlock()
				} else {
					slog.Warn().Str("file_key", string(e.key)).Err(err).Msg("populate read failed, dropping update")
					metrics.SyncItemErrorsTotal.Inc()
				}
				return nil
			}

			carrier, ferr := f(gctx, e.key, contents)
			if ferr != nil {
				slog.Warn().Str("file_key", string(e.key)).Err(ferr).Msg("populate function failed, dropping update")
				metrics.SyncItemErrorsTotal.Inc()
				return nil
			}

			results[i] = &entry[V]{key: e.key, state: e.state, carrier: carrier}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Sync[V, T]{
		store:   sy.store,
		id:      sy.id,
		deletes: append(append([]types.FileKey{}, sy.deletes...), extraDeletes...),
	}
	for _, r := range results {
		if r != nil {
			out.entries = append(out.entries, *r)
		}
	}
	return out, nil
}

// Map applies a pure one-to-one function to every carrier.
func Map[U, V, T any](sy *Sync[U, T], f func(U) V) *Sync[V, T] {
	out := &Sync[V, T]{store: sy.store, id: sy.id, deletes: sy.deletes, entries: make([]entry[V], len(sy.entries))}
	for i, e := range sy.entries {
		out.entries[i] = entry[V]{key: e.key, state: e.state, carrier: f(e.carrier)}
	}
	return out
}

// FlatMap expands each carrier into zero or more carriers, each inheriting
// its parent's key and state.
func FlatMap[U, V, T any](sy *Sync[U, T], f func(U) []V) *Sync[V, T] {
	out := &Sync[V, T]{store: sy.store, id: sy.id, deletes: sy.deletes}
	for _, e := range sy.entries {
		for _, v := range f(e.carrier) {
			out.entries = append(out.entries, entry[V]{key: e.key, state: e.state, carrier: v})
		}
	}
	return out
}

// InnerFlatten specializes FlatMap for a carrier that is already a
// sequence, flattening it with the same key/state inheritance rule.
func InnerFlatten[T, E any](sy *Sync[[]E, T]) *Sync[E, T] {
	return FlatMap(sy, func(xs []E) []E { return xs })
}

// ExternalAsyncMap batches every current carrier (preserving order) into a
// single call to f, then re-zips the result against the original
// (key, state) tuples by position. It fails the session if f returns a
// slice of the wrong length.
func ExternalAsyncMap[U, V, T any](ctx context.Context, sy *Sync[U, T], f func(ctx context.Context, carriers []U) ([]V, error)) (*Sync[V, T], error) {
	carriers := make([]U, len(sy.entries))
	for i, e := range sy.entries {
		carriers[i] = e.carrier
	}

	mapped, err := f(ctx, carriers)
	if err != nil {
		return nil, err
	}
	if len(mapped) != len(carriers) {
		return nil, fmt.Errorf("%w: external async map returned %d items for %d inputs", types.ErrLengthMismatch, len(mapped), len(carriers))
	}

	out := &Sync[V, T]{store: sy.store, id: sy.id, deletes: sy.deletes, entries: make([]entry[V], len(sy.entries))}
	for i, e := range sy.entries {
		out.entries[i] = entry[V]{key: e.key, state: e.state, carrier: mapped[i]}
	}
	return out, nil
}

// Commit groups updates by (key, state) into per-key item sequences, hands
// the grouped updates and deletes to the transaction layer in a single
// write transaction, and returns a fresh store with a rebuilt cache.
// Commit is only callable once the session's carrier type equals the
// store's item type — Go has no dependent-type check for that, so the
// constraint is enforced by Commit's signature accepting only *Sync[T, T].
func Commit[T any](sy *Sync[T, T]) (*Store[T], error) {
	slog := log.WithSyncID(sy.id)
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SyncDuration)

	grouped := make(map[types.FileKey]storage.Update[T])
	for _, e := range sy.entries {
		u := grouped[e.key]
		u.State = e.state
		u.Items = append(u.Items, e.carrier)
		grouped[e.key] = u
	}

	commitTimer := metrics.NewTimer()
	if err := sy.store.txStore.ApplySync(grouped, sy.deletes); err != nil {
		metrics.SyncFailuresTotal.WithLabelValues("transaction").Inc()
		slog.Error().Err(err).Msg("sync commit failed")
		return nil, err
	}
	commitTimer.ObserveDuration(metrics.CommitDuration)

	metrics.SyncUpdatesTotal.Add(float64(len(grouped)))
	metrics.SyncDeletesTotal.Add(float64(len(sy.deletes)))

	newStore, err := openStore[T](sy.store.root, sy.store.scanCfg, sy.store.txStore)
	if err != nil {
		return nil, err
	}

	slog.Info().Int("updates", len(grouped)).Int("deletes", len(sy.deletes)).Msg("sync committed")
	return newStore, nil
}
