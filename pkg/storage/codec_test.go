package storage

import (
	"testing"
	"time"

	"github.com/cuemby/mdvault/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRoundTrip(t *testing.T) {
	type note struct {
		Heading string
		Body    string
	}

	tests := []struct {
		name string
		item note
	}{
		{name: "simple", item: note{Heading: "# A", Body: "hello"}},
		{name: "empty fields", item: note{}},
		{name: "unicode", item: note{Heading: "日本語", Body: "emoji 🎉"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := encodeItem(tt.item)
			require.NoError(t, err)
			got, err := decodeItem[note](raw)
			require.NoError(t, err)
			assert.Equal(t, tt.item, got)
		})
	}
}

func TestItemSequenceRoundTrip(t *testing.T) {
	items := [][]byte{[]byte("a"), []byte(""), []byte("ccc")}
	encoded := encodeItemSequence(items)
	decoded, err := decodeItemSequence(encoded)
	require.NoError(t, err)
	assert.Equal(t, items, decoded)
}

func TestItemSequenceEmpty(t *testing.T) {
	encoded := encodeItemSequence(nil)
	decoded, err := decodeItemSequence(encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestItemSequenceTruncated(t *testing.T) {
	encoded := encodeItemSequence([][]byte{[]byte("hello")})
	_, err := decodeItemSequence(encoded[:len(encoded)-2])
	assert.Error(t, err)
}

func TestFileStateRoundTrip(t *testing.T) {
	state := types.FileStateFromTime(time.Now())
	raw := encodeFileState(state)
	assert.Len(t, raw, fileStateWidth)

	got, err := decodeFileState(raw)
	require.NoError(t, err)
	assert.True(t, state.Equal(got))
}

func TestFileStateWrongWidth(t *testing.T) {
	_, err := decodeFileState([]byte{1, 2, 3})
	assert.Error(t, err)
}
