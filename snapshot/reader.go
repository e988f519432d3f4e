package snapshot

import "obsidian/infra/memory"

/*
Snapshot Reader

gateway.Gateway holds exactly one Reader, entered/exited around each
Snapshot() call so gateway.AdvanceEpoch knows it must not hand a
retired Order record back to pool.OrderPool while a snapshot walk
might still be looking at it. It is a thin adapter over
memory.ReaderEpoch; everything else (epoching, reclamation) is handled
in infra/memory and gateway/retiring_pool.go.
*/

type Reader struct {
	epoch *memory.ReaderEpoch
}

func NewReader() *Reader {
	return &Reader{
		epoch: &memory.ReaderEpoch{},
	}
}

// Begin marks the start of a consistent snapshot.
func (r *Reader) Begin() {
	r.epoch.Enter()
}

// End marks the end of a snapshot.
func (r *Reader) End() {
	r.epoch.Exit()
}

// Epoch exposes the underlying epoch for reclaimers.
func (r *Reader) Epoch() *memory.ReaderEpoch {
	return r.epoch
}
