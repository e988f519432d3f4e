package orderbook

import "testing"

func newTestOrder(id uint64, qty uint32) *Order {
	o := &Order{}
	o.Init(id, id, Limit, Buy, GoodTillCancel, 100, qty)
	return o
}

func TestPriceLevelEnqueuePreservesArrivalOrder(t *testing.T) {
	lvl := &PriceLevel{Price: 100}
	a, b, c := newTestOrder(1, 5), newTestOrder(2, 5), newTestOrder(3, 5)
	lvl.Enqueue(a)
	lvl.Enqueue(b)
	lvl.Enqueue(c)

	if lvl.OrderCount != 3 || lvl.TotalQty != 15 {
		t.Fatalf("count=%d qty=%d, want 3/15", lvl.OrderCount, lvl.TotalQty)
	}

	got := []*Order{lvl.PopHead(), lvl.PopHead(), lvl.PopHead()}
	want := []*Order{a, b, c}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pop order[%d] = order %d, want order %d", i, got[i].ID, want[i].ID)
		}
	}
	if !lvl.Empty() {
		t.Fatalf("level should be empty after draining all orders")
	}
}

func TestPriceLevelRemoveMidList(t *testing.T) {
	lvl := &PriceLevel{Price: 100}
	a, b, c := newTestOrder(1, 5), newTestOrder(2, 5), newTestOrder(3, 5)
	lvl.Enqueue(a)
	lvl.Enqueue(b)
	lvl.Enqueue(c)

	lvl.Remove(b)
	if lvl.OrderCount != 2 || lvl.TotalQty != 10 {
		t.Fatalf("count=%d qty=%d, want 2/10", lvl.OrderCount, lvl.TotalQty)
	}
	if lvl.Head() != a {
		t.Fatalf("head = order %d, want order 1", lvl.Head().ID)
	}
	if a.Next() != c {
		t.Fatalf("a.Next() = %v, want order 3", a.Next())
	}
	if c.Prev() != a {
		t.Fatalf("c.Prev() = %v, want order 1", c.Prev())
	}
}

func TestPriceLevelRemoveHeadAndTail(t *testing.T) {
	lvl := &PriceLevel{Price: 100}
	a := newTestOrder(1, 5)
	lvl.Enqueue(a)
	lvl.Remove(a)
	if !lvl.Empty() {
		t.Fatalf("level should be empty after removing its only order")
	}
	if lvl.Head() != nil {
		t.Fatalf("Head() = %v, want nil", lvl.Head())
	}
}
