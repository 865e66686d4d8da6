package prefs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Value tags used by the badger encoding.
const (
	tagString byte = 's'
	tagInt    byte = 'i'
	tagLong   byte = 'l'
	tagBool   byte = 'b'
	tagFloat  byte = 'f'
)

var errBadValue = errors.New("malformed stored value")

func marshalValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return append([]byte{tagString}, val...), nil
	case int32:
		buf := make([]byte, 5)
		buf[0] = tagInt
		binary.BigEndian.PutUint32(buf[1:], uint32(val))
		return buf, nil
	case int64:
		buf := make([]byte, 9)
		buf[0] = tagLong
		binary.BigEndian.PutUint64(buf[1:], uint64(val))
		return buf, nil
	case bool:
		if val {
			return []byte{tagBool, 1}, nil
		}
		return []byte{tagBool, 0}, nil
	case float32:
		buf := make([]byte, 5)
		buf[0] = tagFloat
		binary.BigEndian.PutUint32(buf[1:], math.Float32bits(val))
		return buf, nil
	default:
		return nil, fmt.Errorf("unsupported preference type %T", v)
	}
}

func unmarshalValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, errBadValue
	}
	body := data[1:]
	switch data[0] {
	case tagString:
		return string(body), nil
	case tagInt:
		if len(body) != 4 {
			return nil, errBadValue
		}
		return int32(binary.BigEndian.Uint32(body)), nil
	case tagLong:
		if len(body) != 8 {
			return nil, errBadValue
		}
		return int64(binary.BigEndian.Uint64(body)), nil
	case tagBool:
		if len(body) != 1 {
			return nil, errBadValue
		}
		return body[0] != 0, nil
	case tagFloat:
		if len(body) != 4 {
			return nil, errBadValue
		}
		return math.Float32frombits(binary.BigEndian.Uint32(body)), nil
	default:
		return nil, fmt.Errorf("%w: tag 0x%02x", errBadValue, data[0])
	}
}
