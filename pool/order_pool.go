// Package pool implements the bounded order-record free-list (spec
// §3/§4.B, component B). Unlike a sync.Pool — which the GC can drain
// at any time and which has no caller-visible size — this is a plain
// LIFO stack the caller fully controls, trimmed deterministically to a
// low water mark once it crosses a high water mark. It takes no locks
// and is not safe for concurrent use.
package pool

import "obsidian/domain/orderbook"

const (
	defaultHighWaterMark = 500
	defaultLowWaterMark  = 250
)

// OrderPool recycles orderbook.Order records to avoid allocating one
// per request on the matching hot path.
type OrderPool struct {
	free []*orderbook.Order
	high int
	low  int
}

// New returns a pool with the default 500/250 high/low water marks.
func New() *OrderPool {
	return NewWithLimits(defaultHighWaterMark, defaultLowWaterMark)
}

// NewWithLimits returns a pool that trims its free-list to low entries
// whenever a Release pushes it past high. low must be <= high.
func NewWithLimits(high, low int) *OrderPool {
	if low > high {
		low = high
	}
	return &OrderPool{high: high, low: low}
}

// Allocate returns an order initialised with the given fields and
// Status New. If the free-list is non-empty, a recycled record is
// popped and overwritten; otherwise a new one is constructed. Never
// fails short of out-of-memory.
func (p *OrderPool) Allocate(id, seqID uint64, typ orderbook.OrderType, side orderbook.Side, tif orderbook.TimeInForce, price, qty uint32) *orderbook.Order {
	var o *orderbook.Order
	if n := len(p.free); n > 0 {
		o = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		o = &orderbook.Order{}
	}
	o.Init(id, seqID, typ, side, tif, price, qty)
	return o
}

// Release returns o to the free-list. Fields are left as-is — Allocate
// overwrites them on the next pop, not Release on push. Callers must
// not retain o after this call. If the free-list exceeds the high
// water mark, it is trimmed to the low water mark; the trimmed
// records become garbage, matching spec §3's "excess records
// destroyed".
func (p *OrderPool) Release(o *orderbook.Order) {
	p.free = append(p.free, o)
	if len(p.free) > p.high {
		trimmed := p.free[:p.low]
		p.free = make([]*orderbook.Order, p.low)
		copy(p.free, trimmed)
	}
}

// Len reports the number of records currently on the free-list.
func (p *OrderPool) Len() int {
	return len(p.free)
}

// PutAny satisfies infra/memory.ReclaimablePool, letting OrderPool be
// the reclamation target of epoch-based retirement (SPEC_FULL §3.3):
// the engine retires an order to the RetireRing instead of releasing
// it directly, and a background reclaimer drains the ring back into
// this pool once no concurrent snapshot reader can still observe it.
func (p *OrderPool) PutAny(v any) {
	o, ok := v.(*orderbook.Order)
	if !ok {
		panic("pool: PutAny received a non-*orderbook.Order value")
	}
	p.Release(o)
}
