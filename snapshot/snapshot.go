package snapshot

import "time"

// Snapshot is a point-in-time dump of every resting order, used to
// bound entry-WAL replay time on restart (SPEC_FULL §3.2): load the
// latest snapshot, then replay only the entry-WAL records after Seq.
type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

// OrderEntry mirrors the resting-order fields of orderbook.Order that
// Init needs to reconstruct it; it deliberately excludes the intrusive
// next/prev pointers, which OrderBook.Add rebuilds on load.
type OrderEntry struct {
	ID           uint64
	SeqID        uint64
	Side         int
	Type         int
	TIF          int
	Price        uint32
	InitialQty   uint32
	RemainingQty uint32
}
