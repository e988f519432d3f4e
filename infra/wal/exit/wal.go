// Package exit implements the durable outbox backing the trade sink
// (component D, spec §2.D/§6): every trade the matching engine emits
// is written here before jobs/broadcaster attempts to publish it to
// Kafka, and is only deleted once that publish is acknowledged. This
// gives the trade sink at-least-once delivery across a process crash,
// even though spec §6 only requires record_trade to "append; never
// fail" — durability here is reliable *dissemination*, not a claim
// that the in-memory book needs replay from this store (infra/wal/entry
// is what replay is for).
package exit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// State tracks one trade record's progress through the outbox.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Record is one outbox entry: the trade's encoded payload plus its
// delivery state.
type Record struct {
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// encoding: [state:1][retries:4][lastAttempt:8][payloadLen:4][payload]
func encodeRecord(r Record) []byte {
	buf := make([]byte, 1+4+8+4+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	binary.BigEndian.PutUint32(buf[13:17], uint32(len(r.Payload)))
	copy(buf[17:], r.Payload)
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	if len(b) < 17 {
		return Record{}, errors.New("exit: record too short")
	}
	payloadLen := binary.BigEndian.Uint32(b[13:17])
	if len(b) != 17+int(payloadLen) {
		return Record{}, errors.New("exit: record length mismatch")
	}
	payload := make([]byte, payloadLen)
	copy(payload, b[17:])
	return Record{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// WAL is a pebble-backed durable outbox, keyed by trade sequence id.
type WAL struct {
	db *pebble.DB
}

// Open opens (or creates) the outbox at dir.
func Open(dir string) (*WAL, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // we want durability
	})
	if err != nil {
		return nil, err
	}
	return &WAL{db: db}, nil
}

func (w *WAL) Close() error {
	return w.db.Close()
}

// PutNew inserts a new outbox entry for a just-emitted trade.
func (w *WAL) PutNew(tradeSeq uint64, payload []byte) error {
	rec := Record{State: StateNew, Payload: payload}
	return w.db.Set(keyFor(tradeSeq), encodeRecord(rec), pebble.Sync)
}

// UpdateState transitions a record's delivery state after a send
// attempt, ack, or failure.
func (w *WAL) UpdateState(tradeSeq uint64, state State, retries uint32) error {
	existing, err := w.Get(tradeSeq)
	if err != nil {
		return err
	}
	existing.State = state
	existing.Retries = retries
	existing.LastAttempt = time.Now().UnixNano()
	return w.db.Set(keyFor(tradeSeq), encodeRecord(existing), pebble.Sync)
}

// Delete removes an acked record (cleanup).
func (w *WAL) Delete(tradeSeq uint64) error {
	return w.db.Delete(keyFor(tradeSeq), pebble.Sync)
}

// Get returns the current record for a trade sequence id.
func (w *WAL) Get(tradeSeq uint64) (Record, error) {
	val, closer, err := w.db.Get(keyFor(tradeSeq))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()
	return decodeRecord(val)
}

// ScanByState iterates all records in the given state, in trade
// sequence order. Used by jobs/broadcaster to find pending/failed
// entries to (re)publish.
func (w *WAL) ScanByState(state State, fn func(tradeSeq uint64, rec Record) error) error {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("trade/"),
		UpperBound: []byte("trade/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(seq, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(tradeSeq uint64) []byte {
	return []byte(fmt.Sprintf("trade/%020d", tradeSeq))
}

func parseKey(b []byte) (uint64, error) {
	var id uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("trade/"))), "%d", &id)
	return id, err
}
