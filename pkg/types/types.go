package types

import (
	"errors"
	"time"
)

// FileKey is the relative path of a file from a store's root directory,
// rendered with the host's path separator. It is the identity of a row in
// both the main table and the state table.
type FileKey = string

// FileState is a fixed-width, opaque stamp summarizing the semantic state of
// a file. Today it holds milliseconds since the Unix epoch, derived from the
// file's modification time; nothing outside pkg/storage's codec and the
// scanner should assume more than equality/inequality over it. A future
// implementation could swap it for a content hash without touching the
// scanner's or store's call sites.
type FileState struct {
	millis uint64
}

// FileStateFromTime derives a FileState from a modification timestamp.
func FileStateFromTime(t time.Time) FileState {
	return FileState{millis: uint64(t.UnixMilli())}
}

// FileStateFromMillis reconstructs a FileState from its millisecond value,
// used when decoding the on-disk state-table codec.
func FileStateFromMillis(millis uint64) FileState {
	return FileState{millis: millis}
}

// Millis returns the milliseconds-since-epoch value carried by the stamp.
func (s FileState) Millis() uint64 {
	return s.millis
}

// Equal reports whether two stamps represent the same semantic state.
func (s FileState) Equal(other FileState) bool {
	return s.millis == other.millis
}

// Error kinds surfaced to external collaborators, grouped by cause rather
// than by concrete type so callers can match with errors.Is regardless of
// which component wrapped them.
var (
	// ErrLengthMismatch is returned when ExternalAsyncMap's user function
	// returns a slice whose length does not match its input. Fatal to the
	// sync session.
	ErrLengthMismatch = errors.New("mdvault: external async map returned mismatched length")

	// ErrTransaction covers open/begin/commit/remove failures in the
	// transaction layer. Fatal to the sync session; no partial write is
	// observable.
	ErrTransaction = errors.New("mdvault: transaction error")

	// ErrCodec covers encode/decode failures for items or file states. At
	// commit time this is fatal to the commit; at read time it is per-item
	// skipped in Iter/DiskIter/Values/Keys but fatal in Fold/MapFn.
	ErrCodec = errors.New("mdvault: codec error")
)
