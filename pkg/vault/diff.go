package vault

import "github.com/cuemby/mdvault/pkg/types"

// diff compares a fresh scan set against the persisted state set and
// produces the updates/deletes pair per spec.md §4.B. updates covers both
// new keys and keys whose stamp changed, since membership is tested on the
// (key, state) pair as a whole; deletes is a stamp-independent key-set
// comparison so a stamp-only change is never mistaken for a deletion.
func diff(scanned, persisted map[types.FileKey]types.FileState) (updates map[types.FileKey]types.FileState, deletes []types.FileKey) {
	updates = make(map[types.FileKey]types.FileState)

	for k, s := range scanned {
		if prior, ok := persisted[k]; !ok || !prior.Equal(s) {
			updates[k] = s
		}
	}

	for k := range persisted {
		if _, ok := scanned[k]; !ok {
			deletes = append(deletes, k)
		}
	}

	return updates, deletes
}
