package vault

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/mdvault/pkg/storage"
	"github.com/cuemby/mdvault/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

// mainTableBucket mirrors pkg/storage's unexported bucket name. It is part
// of the on-disk wire format (spec.md mandates it literally), not an
// implementation detail, so a test in a different package may rely on it
// to corrupt a main-table value directly.
var mainTableBucket = []byte("main-table")

// corruptMainTableValue overwrites the main-table entry for key with bytes
// that cannot be parsed as a length-prefixed item sequence, simulating
// on-disk corruption.
func corruptMainTableValue(t *testing.T, dir, key string) {
	t.Helper()
	db, err := bolt.Open(filepath.Join(dir, storage.DBName), 0o600, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(mainTableBucket)
		require.NotNil(t, b)
		return b.Put([]byte(key), []byte{0xff, 0xff, 0xff})
	}))
}

// lines splits file contents on newlines, the pipeline used by every
// end-to-end scenario below.
func lines(ctx context.Context, key string, contents []byte) ([]string, error) {
	return strings.Split(string(contents), "\n"), nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func syncAll(t *testing.T, store *Store[string]) *Store[string] {
	t.Helper()
	sy, err := BeginSync(store)
	require.NoError(t, err)
	populated, err := Populate(context.Background(), sy, lines)
	require.NoError(t, err)
	flattened := FlatMap(populated, func(s []string) []string { return s })
	newStore, err := Commit(flattened)
	require.NoError(t, err)
	return newStore
}

// TestInitialPopulation is scenario 1: a.md/b.md populated and split into
// lines.
func TestInitialPopulation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\nB")
	writeFile(t, dir, "b.md", "C")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)
	store = syncAll(t, store)

	var got []string
	for k, v := range store.Iter() {
		got = append(got, k+":"+v)
	}
	sort.Strings(got)
	assert.Equal(t, []string{"a.md:# A", "a.md:B", "b.md:C"}, got)

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a.md", "b.md"}, keys)
}

// TestIdempotentResync is scenario 2: re-syncing unchanged files produces
// no updates and no deletes.
func TestIdempotentResync(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\nB")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)
	store = syncAll(t, store)

	sy, err := BeginSync(store)
	require.NoError(t, err)
	assert.Equal(t, 0, sy.Len())
	assert.Empty(t, sy.deletes)
}

// TestModification is scenario 3: rewriting a.md yields a single update and
// no deletes.
func TestModification(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")
	writeFile(t, dir, "b.md", "C")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)
	store = syncAll(t, store)

	time.Sleep(5 * time.Millisecond)
	writeFile(t, dir, "a.md", "# A2")

	sy, err := BeginSync(store)
	require.NoError(t, err)
	assert.Equal(t, 1, sy.Len())
	assert.Equal(t, "a.md", sy.entries[0].key)
	assert.Empty(t, sy.deletes)

	store = syncAll(t, store)
	values, err := store.Values(context.Background())
	require.NoError(t, err)
	sort.Strings(values)
	assert.Equal(t, []string{"# A2", "C"}, values)
}

// TestDeletion is scenario 4: removing b.md yields zero updates and one
// delete.
func TestDeletion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")
	writeFile(t, dir, "b.md", "C")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)
	store = syncAll(t, store)

	require.NoError(t, os.Remove(filepath.Join(dir, "b.md")))

	sy, err := BeginSync(store)
	require.NoError(t, err)
	assert.Equal(t, 0, sy.Len())
	assert.Equal(t, []string{"b.md"}, sy.deletes)

	store = syncAll(t, store)
	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, keys)
}

// TestHiddenFileExclusion is scenario 5: a dotfile contributes nothing.
func TestHiddenFileExclusion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)
	store = syncAll(t, store)

	writeFile(t, dir, ".draft.md", "secret")

	sy, err := BeginSync(store)
	require.NoError(t, err)
	assert.Equal(t, 0, sy.Len())
	assert.Empty(t, sy.deletes)
}

// TestHiddenDirectoryExclusion covers the boundary behavior: a hidden
// directory's markdown contents never surface as updates.
func TestHiddenDirectoryExclusion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/HEAD.md", "ref: refs/heads/main")
	writeFile(t, dir, "a.md", "# A")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)

	sy, err := BeginSync(store)
	require.NoError(t, err)
	assert.Equal(t, 1, sy.Len())
	assert.Equal(t, "a.md", sy.entries[0].key)
}

// TestCaseInsensitiveExtension covers FOO.MARKDOWN being included.
func TestCaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "FOO.MARKDOWN", "content")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)

	sy, err := BeginSync(store)
	require.NoError(t, err)
	assert.Equal(t, 1, sy.Len())
}

// TestExternalAsyncMapLengthMismatch is scenario 6: a shrinking batch
// function fails the session with no commit and no on-disk change.
func TestExternalAsyncMapLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")
	writeFile(t, dir, "b.md", "C")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)

	sy, err := BeginSync(store)
	require.NoError(t, err)
	populated, err := Populate(context.Background(), sy, func(ctx context.Context, key string, contents []byte) (string, error) {
		return string(contents), nil
	})
	require.NoError(t, err)

	_, err = ExternalAsyncMap(context.Background(), populated, func(ctx context.Context, carriers []string) ([]string, error) {
		if len(carriers) == 0 {
			return carriers, nil
		}
		return carriers[:len(carriers)-1], nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrLengthMismatch)

	_, statErr := os.Stat(filepath.Join(dir, storage.DBName))
	assert.True(t, os.IsNotExist(statErr), "no database should have been created by a failed sync")
}

// TestFreshDirectoryNoDeletes covers the boundary: a brand new root yields
// every accepted file as an update and zero deletes.
func TestFreshDirectoryNoDeletes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "x")
	writeFile(t, dir, "b.markdown", "y")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)

	sy, err := BeginSync(store)
	require.NoError(t, err)
	assert.Equal(t, 2, sy.Len())
	assert.Empty(t, sy.deletes)
}

// TestCodecErrorFoldMapFatalButIterationSkips covers spec.md's read-time
// codec error split: Values/Keys/DiskIter skip an undecodable
// main-table value, while Fold and MapFn treat it as fatal.
func TestCodecErrorFoldMapFatalButIterationSkips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")
	writeFile(t, dir, "b.md", "# B")

	store, err := Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)
	store = syncAll(t, store)

	corruptMainTableValue(t, dir, "a.md")

	// Reopen so the in-memory cache is rebuilt from the now-corrupt
	// database via the same skip-on-decode-error path Snapshot uses.
	store, err = Open[string](dir, DefaultScanConfig())
	require.NoError(t, err)

	ctx := context.Background()

	values, err := store.Values(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"# B"}, values)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md"}, keys)

	var diskGot []string
	seq, closeFn, err := store.DiskIter(ctx)
	require.NoError(t, err)
	seq(func(_ types.FileKey, v string) bool {
		diskGot = append(diskGot, v)
		return true
	})
	require.NoError(t, closeFn())
	assert.Equal(t, []string{"# B"}, diskGot)

	_, foldErr := Fold(ctx, store, 0, func(acc int, _ types.FileKey, _ string) int {
		return acc + 1
	})
	require.Error(t, foldErr)
	assert.ErrorIs(t, foldErr, types.ErrCodec)

	_, mapErr := MapFn(ctx, store, func(_ types.FileKey, v string) (string, error) {
		return v, nil
	})
	require.Error(t, mapErr)
	assert.ErrorIs(t, mapErr, types.ErrCodec)
}
