package backup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/muurk/nfcprofile/internal/logging"
)

// StateSize is the length of the staleness token.
const StateSize = 8

// maxBlockSize bounds a single block read from a stream.
const maxBlockSize = 64 << 20

// Block is one named payload in a backup stream.
type Block struct {
	Name string
	Data []byte
}

// WriteBlock writes one framed block:
//
//	uint16 name length | name | uint32 data length | data
func WriteBlock(w io.Writer, name string, data []byte) error {
	if len(name) > math.MaxUint16 {
		return fmt.Errorf("block name too long: %d bytes", len(name))
	}
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("block %s too large: %d bytes", name, len(data))
	}

	header := make([]byte, 2+len(name)+4)
	binary.BigEndian.PutUint16(header[0:2], uint16(len(name)))
	copy(header[2:], name)
	binary.BigEndian.PutUint32(header[2+len(name):], uint32(len(data)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write block header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write block %s: %w", name, err)
	}
	logging.LogBackupBlock("write", name, len(data))
	return nil
}

// BlockReader reads framed blocks until EOF.
type BlockReader struct {
	r io.Reader
}

// NewBlockReader returns a reader over r.
func NewBlockReader(r io.Reader) *BlockReader {
	return &BlockReader{r: r}
}

// Next returns the next block, or io.EOF after the last one.
func (br *BlockReader) Next() (*Block, error) {
	var nlen [2]byte
	if _, err := io.ReadFull(br.r, nlen[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read block header: %w", err)
	}

	name := make([]byte, binary.BigEndian.Uint16(nlen[:]))
	if _, err := io.ReadFull(br.r, name); err != nil {
		return nil, fmt.Errorf("failed to read block name: %w", err)
	}

	var size uint32
	if err := binary.Read(br.r, binary.BigEndian, &size); err != nil {
		return nil, fmt.Errorf("failed to read size of block %s: %w", name, err)
	}
	if size > maxBlockSize {
		return nil, fmt.Errorf("block %s claims %d bytes: %w", name, size, ErrCorruptBlock)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(br.r, data); err != nil {
		return nil, fmt.Errorf("failed to read block %s: %w", name, err)
	}

	logging.LogBackupBlock("read", string(name), len(data))
	return &Block{Name: string(name), Data: data}, nil
}

// ReadState reads an 8-byte big endian timestamp.
func ReadState(r io.Reader) (int64, error) {
	var ts int64
	if err := binary.Read(r, binary.BigEndian, &ts); err != nil {
		return 0, fmt.Errorf("failed to read backup state: %w", err)
	}
	return ts, nil
}

// WriteState writes an 8-byte big endian timestamp.
func WriteState(w io.Writer, ts int64) error {
	if err := binary.Write(w, binary.BigEndian, ts); err != nil {
		return fmt.Errorf("failed to write backup state: %w", err)
	}
	return nil
}

// ShouldBackup reports whether data changed since the backup recorded in
// oldState. A missing or unreadable state always calls for a backup.
func ShouldBackup(oldState io.Reader, lastChange int64) bool {
	if oldState == nil {
		return true
	}
	prev, err := ReadState(oldState)
	if err != nil {
		return true
	}
	return prev != lastChange
}
