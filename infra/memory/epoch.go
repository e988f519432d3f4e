package memory

import "sync/atomic"

// GlobalEpoch monotonically increases once per AdvanceEpochAndReclaim
// call, which in this repo is once per gateway.AdvanceEpoch tick.
var GlobalEpoch atomic.Uint64

const inactive = ^uint64(0)

// ReaderEpoch marks when a reader entered a read section. The only
// reader in this repo is snapshot.Reader, wrapping one per
// gateway.Gateway so Snapshot() can run concurrently with the engine.
type ReaderEpoch struct {
	epoch atomic.Uint64
}

func (r *ReaderEpoch) Enter() {
	r.epoch.Store(GlobalEpoch.Load())
}

func (r *ReaderEpoch) Exit() {
	r.epoch.Store(inactive)
}

func (r *ReaderEpoch) Value() uint64 {
	return r.epoch.Load()
}

// ReclaimablePool is the ONLY requirement for reclamation.
// It is intentionally type-erased.
type ReclaimablePool interface {
	PutAny(any)
}

// AdvanceEpochAndReclaim advances the epoch and returns retired
// Order records to pool.OrderPool. Records carry no retirement epoch,
// so the test is all-or-nothing: when no ReaderEpoch is inside a read
// section the whole ring is drained; when any reader is active,
// nothing is reclaimed on this call.
func AdvanceEpochAndReclaim(
	ring *RetireRing,
	pool ReclaimablePool,
	readers ...*ReaderEpoch,
) {
	GlobalEpoch.Add(1)
	min := minReaderEpoch(readers...)

	for {
		obj := ring.Dequeue()
		if obj == nil {
			return
		}

		if min == inactive {
			pool.PutAny(obj)
			continue
		}

		// Not safe yet → FIFO guarantees newer ones aren't either
		_ = ring.Enqueue(obj)
		return
	}
}

func minReaderEpoch(rs ...*ReaderEpoch) uint64 {
	min := inactive
	for _, r := range rs {
		if r == nil {
			continue
		}
		v := r.Value()
		if v < min {
			min = v
		}
	}
	return min
}
