package orderbook

// PriceLevel is an intrusive FIFO queue of resting orders at a single
// price. Orders are linked through their own next/prev fields, so a
// stored *Order handle (kept by OrderBook's id index) removes in O(1)
// without shifting anything else in the level — required by spec for
// O(log P) cancel (the O(log P) comes from finding the level; removal
// within it is O(1)).
type PriceLevel struct {
	Price uint32

	head *Order
	tail *Order

	TotalQty   uint64
	OrderCount int
}

// Enqueue appends o to the tail of the level (arrival order = time
// priority).
func (p *PriceLevel) Enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalQty += uint64(o.Remaining())
	p.OrderCount++
}

// PopHead removes and returns the order at the head of the FIFO
// (best time priority), or nil if the level is empty.
func (p *PriceLevel) PopHead() *Order {
	return p.Remove(p.head)
}

// Remove detaches o from the level in O(1). o must currently be linked
// into this level (the caller — OrderBook — guarantees this via its id
// index); removing an order not present in the level corrupts the
// list, so callers must never pass an order the level doesn't own.
func (p *PriceLevel) Remove(o *Order) *Order {
	if o == nil {
		return nil
	}

	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}

	o.next = nil
	o.prev = nil

	p.TotalQty -= uint64(o.Remaining())
	p.OrderCount--

	return o
}

// Empty reports whether the level has no resting orders. An empty
// level must be erased from the price index (see OrderBook).
func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// Head returns the order with the earliest arrival at this level, or
// nil if the level is empty.
func (p *PriceLevel) Head() *Order {
	return p.head
}
