/*
Package vault ties the scanner, diff engine, typed sync pipeline, and
transaction layer together into the store an external collaborator opens
and reads from.

# Architecture

	┌────────────────────── VAULT PIPELINE ─────────────────────┐
	│                                                            │
	│  Open(dir)                                                 │
	│     │  builds cache from pkg/storage.Snapshot              │
	│     ▼                                                      │
	│  Store[T] ── BeginSync ──► Sync[struct{}, T]                │
	│                                  │                          │
	│                     Populate / Map / FlatMap /              │
	│                     InnerFlatten / ExternalAsyncMap         │
	│                                  │                          │
	│                                  ▼                          │
	│                          Sync[T, T]  (carrier == item)       │
	│                                  │                          │
	│                               Commit                        │
	│                                  │                          │
	│                                  ▼                          │
	│                          Store[T] (fresh cache)              │
	└────────────────────────────────────────────────────────────┘

Every stage function that changes the carrier type is a free generic
function rather than a method, because a Go method cannot introduce type
parameters of its own beyond the receiver's. Commit's signature,
`Commit[T any](*Sync[T, T]) (*Store[T], error)`, is the compile-time
enforcement that a session is only committable once its carrier has become
the store's item type — calling Commit on a Sync[U, T] with U != T simply
does not type-check.

# Usage

	store, err := vault.Open[Note]("/path/to/notes", vault.DefaultScanConfig())
	sy, err := vault.BeginSync(store)
	sy2, err := vault.Populate(ctx, sy, func(ctx context.Context, key string, contents []byte) (Note, error) {
		return parseNote(contents), nil
	})
	store, err = vault.Commit(sy2)
	for key, note := range store.Iter() {
		// ...
	}
*/
package vault
