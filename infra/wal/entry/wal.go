package entry

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"obsidian/infra/memory"
)

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
}

type WAL struct {
	dir        string
	segSize    int64
	current    *segment
	segIndex   int
	lastRotate time.Time

	bufPool *memory.Pool[[]byte]
}

func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	seg, err := openSegment(cfg.Dir, 0)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:        cfg.Dir,
		segSize:    cfg.SegmentSize,
		current:    seg,
		lastRotate: time.Now(),
		bufPool: memory.NewPool(func() *[]byte {
			b := make([]byte, 0, 128)
			return &b
		}),
	}, nil
}

func (w *WAL) Append(r *Record) error {
	payloadLen := uint32(len(r.Payload))
	frameLen := int(1 + 8 + 8 + 4 + payloadLen + 4)

	// Frame:
	// [kind:1][seq:8][time:8][len:4][payload][crc:4]
	bufPtr := w.bufPool.Get()
	buf := *bufPtr
	if cap(buf) < frameLen {
		buf = make([]byte, frameLen)
	} else {
		buf = buf[:frameLen]
	}

	buf[0] = byte(r.Kind)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[21:], r.Payload)

	crc := CRC32(buf[:21+payloadLen])
	binary.BigEndian.PutUint32(buf[21+payloadLen:], crc)

	err := w.current.append(buf)

	*bufPtr = buf[:0]
	w.bufPool.Put(bufPtr)

	if err != nil {
		return err
	}

	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

func (w *WAL) rotate() error {
	_ = w.current.close()
	w.segIndex++

	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}

	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// Close flushes and closes the active segment.
func (w *WAL) Close() error {
	return w.current.close()
}

func (w *WAL) TruncateBefore(seq uint64) error {
	files, err := filepath.Glob(filepath.Join(w.dir, "segment-*.wal"))
	if err != nil {
		return err
	}

	for _, path := range files {
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}
