package gateway

import (
	"obsidian/domain/orderbook"
	"obsidian/infra/memory"
	"obsidian/pool"
)

// retiringPool decorates pool.OrderPool so terminal orders are handed
// to the epoch reclamation ring instead of being released directly
// (SPEC_FULL §3.3). This lets Snapshot() walk the book concurrently
// with engine mutation from a second goroutine: a reader that entered
// its epoch before an order was retired is guaranteed the ring won't
// recycle that record's memory out from under it. The engine sees this
// only through the engine.OrderAllocator interface — it has no idea
// retirement is deferred.
type retiringPool struct {
	pool *pool.OrderPool
	ring *memory.RetireRing
}

func newRetiringPool(p *pool.OrderPool, ring *memory.RetireRing) *retiringPool {
	return &retiringPool{pool: p, ring: ring}
}

func (r *retiringPool) Allocate(id, seqID uint64, typ orderbook.OrderType, side orderbook.Side, tif orderbook.TimeInForce, price, qty uint32) *orderbook.Order {
	return r.pool.Allocate(id, seqID, typ, side, tif, price, qty)
}

// Release retires o to the ring rather than pushing it straight back
// onto the pool's free-list. A background ticker (see AdvanceEpoch)
// drains the ring into the pool once no concurrent reader can still
// observe the retired record. If the ring is momentarily full, we fall
// back to an immediate release — correctness over throughput, since a
// full ring only happens under sustained snapshot contention.
func (r *retiringPool) Release(o *orderbook.Order) {
	if !r.ring.Enqueue(o) {
		r.pool.Release(o)
	}
}
