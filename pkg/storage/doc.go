/*
Package storage is the transaction layer (component D): a single bbolt
database per vault, holding two buckets per item type.

# Architecture

	┌──────────────────── BOLTDB STORAGE ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            BoltStore[T]                      │          │
	│  │  - File: <root>/oxide.db                     │          │
	│  │  - Format: B+tree with MVCC                  │          │
	│  │  - Transactions: ACID with fsync             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Bucket Structure                │          │
	│  │  main-table  : file key -> ordered items     │          │
	│  │  state-table : file key -> FileState stamp   │          │
	│  │                __schema__ -> schema tag      │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

main-table values are length-prefixed sequences of msgpack-encoded items
(codec.go); state-table values are the 16-byte FileState encoding. Both
buckets are written inside the same db.Update call in ApplySync, so a
commit is all-or-nothing across both tables.

# Usage

	store := storage.NewBoltStore[Note](root)
	prior, err := store.State()             // nil map if no database yet
	err = store.ApplySync(updates, deletes)  // single write transaction
	entries, err := store.Snapshot()         // full read, for cache rebuild
	txn, err := store.OpenDiskTxn()          // streaming uncached read
	defer txn.Close()

Missing database file is not an error anywhere in this package: State,
Snapshot, and OpenDiskTxn all report an empty result, matching the "no
prior vault" case the sync pipeline must tolerate.

# See Also

  - pkg/vault for the cache, scanner, and pipeline built on top of this
  - BoltDB documentation: https://github.com/etcd-io/bbolt
*/
package storage
