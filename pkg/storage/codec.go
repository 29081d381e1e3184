package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/cuemby/mdvault/pkg/types"
	"github.com/hashicorp/go-msgpack/v2/codec"
)

// msgpackHandle is shared by every encode/decode call. It carries no
// mutable state once constructed, so a single instance is safe to reuse
// across goroutines.
var msgpackHandle = &codec.MsgpackHandle{}

// encodeItem serializes an item to its deterministic binary form. The store
// treats the result as opaque; only the length-prefixing in
// encodeItemSequence below gives it structure.
func encodeItem[T any](item T) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, msgpackHandle)
	if err := enc.Encode(item); err != nil {
		return nil, fmt.Errorf("%w: encode item: %v", types.ErrCodec, err)
	}
	return out, nil
}

// decodeItem is encodeItem's inverse.
func decodeItem[T any](raw []byte) (T, error) {
	var item T
	dec := codec.NewDecoderBytes(raw, msgpackHandle)
	if err := dec.Decode(&item); err != nil {
		return item, fmt.Errorf("%w: decode item: %v", types.ErrCodec, err)
	}
	return item, nil
}

// encodeItemSequence lays out an ordered sequence of already-encoded items
// as a single main-table value: a uint32 count followed by each item
// length-prefixed with a uint32. This is the "ordered sequence of byte
// strings" spec.md §4.D describes; the individual items inside remain
// opaque to this function.
func encodeItemSequence(items [][]byte) []byte {
	size := 4
	for _, it := range items {
		size += 4 + len(it)
	}
	buf := make([]byte, 0, size)
	var lenBuf [4]byte

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(items)))
	buf = append(buf, lenBuf[:]...)

	for _, it := range items {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(it)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, it...)
	}
	return buf
}

// decodeItemSequence is encodeItemSequence's inverse.
func decodeItemSequence(data []byte) ([][]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: main-table value too short for count prefix", types.ErrCodec)
	}
	count := binary.LittleEndian.Uint32(data[:4])
	data = data[4:]

	items := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 4 {
			return nil, fmt.Errorf("%w: truncated item %d of %d", types.ErrCodec, i, count)
		}
		itemLen := binary.LittleEndian.Uint32(data[:4])
		data = data[4:]
		if uint64(len(data)) < uint64(itemLen) {
			return nil, fmt.Errorf("%w: truncated item %d of %d", types.ErrCodec, i, count)
		}
		items = append(items, data[:itemLen])
		data = data[itemLen:]
	}
	return items, nil
}

// fileStateWidth is the fixed width of the state-table codec, matching
// spec.md §4.F's 16-byte little-endian layout. This implementation carries
// the stamp in a 64-bit millisecond counter (see pkg/types.FileState) and
// zero-extends it to 16 bytes so the on-disk layout stays wire-compatible
// with a future 128-bit stamp.
const fileStateWidth = 16

func encodeFileState(s types.FileState) []byte {
	buf := make([]byte, fileStateWidth)
	binary.LittleEndian.PutUint64(buf[:8], s.Millis())
	return buf
}

func decodeFileState(raw []byte) (types.FileState, error) {
	if len(raw) != fileStateWidth {
		return types.FileState{}, fmt.Errorf("%w: state-table value must be %d bytes, got %d", types.ErrCodec, fileStateWidth, len(raw))
	}
	return types.FileStateFromMillis(binary.LittleEndian.Uint64(raw[:8])), nil
}
