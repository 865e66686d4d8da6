package backup

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/prefs"
)

// Entry value tags
const (
	TagString byte = 0x01
	TagInt32  byte = 0x02
	TagBool   byte = 0x03
)

var (
	// ErrCorruptBlock is reported when an entry carries an unknown tag.
	ErrCorruptBlock = errors.New("corrupt backup block")
	// ErrTruncatedBlock is reported when a block ends inside an entry.
	ErrTruncatedBlock = errors.New("truncated backup block")
)

// Encode serializes the string, int32 and bool entries of store, sorted by
// key. Entries of any other type are left out.
//
// Entry layout:
//
//	uint16 key length | key | tag | value
//
// where a string value is uint32 length + bytes, an int32 is 4 bytes big
// endian and a bool is one byte.
func Encode(store *prefs.Store) []byte {
	var buf bytes.Buffer
	for _, key := range store.Keys() {
		v, ok := store.Lookup(key)
		if !ok {
			continue
		}
		if len(key) > math.MaxUint16 {
			logging.Warn("Skipping preference with oversized key", zap.String("store", store.Name()), zap.Int("length", len(key)))
			continue
		}

		var val []byte
		switch tv := v.(type) {
		case string:
			val = make([]byte, 5+len(tv))
			val[0] = TagString
			binary.BigEndian.PutUint32(val[1:5], uint32(len(tv)))
			copy(val[5:], tv)
		case int32:
			val = make([]byte, 5)
			val[0] = TagInt32
			binary.BigEndian.PutUint32(val[1:], uint32(tv))
		case bool:
			val = []byte{TagBool, 0}
			if tv {
				val[1] = 1
			}
		default:
			logging.Debug("Not backing up preference",
				zap.String("store", store.Name()),
				zap.String("key", key),
				zap.String("type", fmt.Sprintf("%T", v)),
			)
			continue
		}

		var klen [2]byte
		binary.BigEndian.PutUint16(klen[:], uint16(len(key)))
		buf.Write(klen[:])
		buf.WriteString(key)
		buf.Write(val)
	}
	return buf.Bytes()
}

// DecodeResult reports what Decode restored.
type DecodeResult struct {
	// Entries is the number of entries written to the store
	Entries int
	// Err is the reason decoding stopped early, or a commit failure
	Err error
}

// Decode clears store and fills it from data. Decoding stops at the first
// unknown tag or truncated entry; entries before that point are kept.
func Decode(data []byte, store *prefs.Store) *DecodeResult {
	res := &DecodeResult{}
	ed := store.Edit().Clear()
	r := bytes.NewReader(data)

	for r.Len() > 0 {
		offset := len(data) - r.Len()
		key, val, err := readEntry(r)
		if err != nil {
			res.Err = fmt.Errorf("entry %d at offset %d: %w", res.Entries, offset, err)
			logging.LogRawBytes("Backup block stopped at", data[offset:])
			break
		}
		switch tv := val.(type) {
		case string:
			ed.PutString(key, tv)
		case int32:
			ed.PutInt(key, tv)
		case bool:
			ed.PutBool(key, tv)
		}
		res.Entries++
	}

	if err := ed.Apply(); err != nil {
		res.Entries = 0
		res.Err = errors.Join(res.Err, fmt.Errorf("commit %s: %w", store.Name(), err))
	}
	return res
}

func readEntry(r *bytes.Reader) (string, any, error) {
	var klen uint16
	if err := binary.Read(r, binary.BigEndian, &klen); err != nil {
		return "", nil, ErrTruncatedBlock
	}
	key := make([]byte, klen)
	if _, err := io.ReadFull(r, key); err != nil {
		return "", nil, ErrTruncatedBlock
	}

	tag, err := r.ReadByte()
	if err != nil {
		return "", nil, ErrTruncatedBlock
	}

	switch tag {
	case TagString:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return "", nil, ErrTruncatedBlock
		}
		if int64(n) > int64(r.Len()) {
			return "", nil, ErrTruncatedBlock
		}
		s := make([]byte, n)
		if _, err := io.ReadFull(r, s); err != nil {
			return "", nil, ErrTruncatedBlock
		}
		return string(key), string(s), nil
	case TagInt32:
		var v int32
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return "", nil, ErrTruncatedBlock
		}
		return string(key), v, nil
	case TagBool:
		b, err := r.ReadByte()
		if err != nil {
			return "", nil, ErrTruncatedBlock
		}
		return string(key), b != 0, nil
	default:
		return "", nil, fmt.Errorf("%w: key %q has tag 0x%02x", ErrCorruptBlock, key, tag)
	}
}
