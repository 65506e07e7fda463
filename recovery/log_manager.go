package recovery

import (
	"encoding/binary"
	"io"
	"sync"
)

/*
Each flushed record:
──────────────────────────────
| LSN (8) | LEN (4) | DATA   |
──────────────────────────────
*/

const recordHeaderSize = 12

// LogManager buffers log records in memory and persists them on Flush. The
// buffer pool holds a handle so surrounding layers can pre-flush records
// before a page is written back; the pool's own paths never consult it.
func NewLogManager(w io.Writer) *LogManager {
	return &LogManager{
		w:          w,
		flushedLSN: -1,
	}
}

// Append buffers a record and returns its log sequence number.
func (lm *LogManager) Append(record []byte) int64 {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lsn := lm.nextLSN
	lm.nextLSN++

	buf := make([]byte, recordHeaderSize+len(record))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(lsn))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(record)))
	copy(buf[recordHeaderSize:], record)
	lm.buffer = append(lm.buffer, buf...)

	return lsn
}

// Flush writes every buffered record to the underlying writer.
func (lm *LogManager) Flush() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if len(lm.buffer) == 0 {
		return nil
	}

	if _, err := lm.w.Write(lm.buffer); err != nil {
		return err
	}

	lm.buffer = lm.buffer[:0]
	lm.flushedLSN = lm.nextLSN - 1

	return nil
}

// FlushedLSN returns the highest LSN known to be persisted, or -1 when
// nothing has been flushed.
func (lm *LogManager) FlushedLSN() int64 {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	return lm.flushedLSN
}

type LogManager struct {
	mu         sync.Mutex
	w          io.Writer
	buffer     []byte
	nextLSN    int64
	flushedLSN int64
}
