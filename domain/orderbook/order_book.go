package orderbook

import "errors"

// ErrDuplicateOrderID is returned by Add when the caller-assigned id
// is already present in the book's index (spec §9: "Implementers
// should reject add when id already indexed").
var ErrDuplicateOrderID = errors.New("orderbook: order id already indexed")

// ErrNotNew is returned by Add when the order isn't in Status New.
var ErrNotNew = errors.New("orderbook: order is not eligible to rest (status != New)")

// OrderBook is the dual-sided, price-indexed FIFO container (component
// E). It holds no matching policy — package engine walks it — and no
// pool reference: removal unlinks and returns the order, the caller
// (engine) is responsible for releasing it back to the pool. This
// keeps orderbook and pool free of a cyclic import, with the engine
// owning both per spec §9's "engine-owned pool instance passed through
// construction".
type OrderBook struct {
	bids *RBTree // descending priority: walked via BestMax/walkDesc
	asks *RBTree // ascending priority: walked via BestMin/walkAsc

	index map[uint64]*Order
}

// NewOrderBook returns an empty book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:  NewRBTree(),
		asks:  NewRBTree(),
		index: make(map[uint64]*Order),
	}
}

func (b *OrderBook) treeFor(side Side) *RBTree {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// Add inserts o at the tail of its (side, price) level and records it
// in the id index. Requires o.Status == New and o.ID not already
// indexed.
func (b *OrderBook) Add(o *Order) error {
	if o.Status != New {
		return ErrNotNew
	}
	if _, exists := b.index[o.ID]; exists {
		return ErrDuplicateOrderID
	}
	b.treeFor(o.Side).GetOrCreate(o.Price).Enqueue(o)
	b.index[o.ID] = o
	return nil
}

// Remove unlinks the order with id from its level, erasing the level
// if it becomes empty, and drops it from the index. No-op (returns
// nil) if id isn't indexed — late removals after a fill elsewhere are
// expected. The caller is responsible for releasing the returned order
// back to the pool.
func (b *OrderBook) Remove(id uint64) *Order {
	o, ok := b.index[id]
	if !ok {
		return nil
	}
	delete(b.index, id)

	tree := b.treeFor(o.Side)
	if lvl := tree.Find(o.Price); lvl != nil {
		lvl.Remove(o)
		if lvl.Empty() {
			tree.Erase(o.Price)
		}
	}
	return o
}

// Cancel marks the resting order with id Cancelled and removes it from
// the book. No-op if id isn't indexed. Propagates ErrIllegalTransition
// if the order is already Filled — unreachable in practice, since
// Filled orders are removed the instant they fill, but spec §4.E
// requires the propagation.
func (b *OrderBook) Cancel(id uint64) (*Order, error) {
	o, ok := b.index[id]
	if !ok {
		return nil, nil
	}
	if err := o.Cancel(); err != nil {
		return nil, err
	}
	return b.Remove(id), nil
}

// Lookup returns the resting order with id, or nil.
func (b *OrderBook) Lookup(id uint64) *Order {
	return b.index[id]
}

// BestBid returns the highest-priced non-empty bid level, or nil.
func (b *OrderBook) BestBid() *PriceLevel {
	return b.bids.BestMax()
}

// BestAsk returns the lowest-priced non-empty ask level, or nil.
func (b *OrderBook) BestAsk() *PriceLevel {
	return b.asks.BestMin()
}

// BestOpposite returns the best level on the side opposite to side —
// i.e. the side an incoming order of side side would walk.
func (b *OrderBook) BestOpposite(side Side) *PriceLevel {
	if side == Buy {
		return b.BestAsk()
	}
	return b.BestBid()
}

// OppositeLevel returns the level at price on the side opposite side,
// or nil. Used by the FOK dry-run scan to walk without mutating.
func (b *OrderBook) OppositeLevel(side Side, price uint32) *PriceLevel {
	if side == Buy {
		return b.asks.Find(price)
	}
	return b.bids.Find(price)
}

// NextOpposite returns the next level after lvl, in priority order, on
// the side opposite side. Used by the FOK dry-run scan.
func (b *OrderBook) NextOpposite(side Side, lvl *PriceLevel) *PriceLevel {
	var t *RBTree
	if side == Buy {
		t = b.asks
	} else {
		t = b.bids
	}
	n := t.find(lvl.Price)
	if n == t.nilN {
		return nil
	}
	var nn *rbNode
	if side == Buy {
		nn = t.next(n)
	} else {
		nn = t.prev(n)
	}
	if nn == t.nilN {
		return nil
	}
	return nn.level
}

// Bids walks bid levels in priority order (highest price first).
func (b *OrderBook) Bids(fn func(*PriceLevel)) {
	b.bids.walkDesc(fn)
}

// Asks walks ask levels in priority order (lowest price first).
func (b *OrderBook) Asks(fn func(*PriceLevel)) {
	b.asks.walkAsc(fn)
}

// Len reports the number of resting orders across both sides.
func (b *OrderBook) Len() int {
	return len(b.index)
}
