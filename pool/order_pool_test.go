package pool

import (
	"testing"

	"obsidian/domain/orderbook"
)

func TestOrderPoolAllocateInitialisesFields(t *testing.T) {
	p := New()
	o := p.Allocate(1, 10, orderbook.Limit, orderbook.Buy, orderbook.GoodTillCancel, 100, 5)
	if o.ID != 1 || o.SeqID != 10 || o.Price != 100 || o.RemainingQty != 5 || o.Status != orderbook.New {
		t.Fatalf("Allocate produced unexpected order: %+v", o)
	}
}

func TestOrderPoolRecyclesReleasedRecords(t *testing.T) {
	p := New()
	o1 := p.Allocate(1, 1, orderbook.Limit, orderbook.Buy, orderbook.GoodTillCancel, 100, 5)
	p.Release(o1)
	if p.Len() != 1 {
		t.Fatalf("Len() after one Release = %d, want 1", p.Len())
	}

	o2 := p.Allocate(2, 2, orderbook.Limit, orderbook.Sell, orderbook.GoodTillCancel, 200, 7)
	if o2 != o1 {
		t.Fatalf("Allocate did not recycle the released record")
	}
	if o2.ID != 2 || o2.Price != 200 || o2.RemainingQty != 7 {
		t.Fatalf("recycled order not fully reinitialised: %+v", o2)
	}
	if p.Len() != 0 {
		t.Fatalf("Len() after recycling = %d, want 0", p.Len())
	}
}

func TestOrderPoolTrimsAtHighWaterMark(t *testing.T) {
	p := NewWithLimits(4, 2)
	var orders []*orderbook.Order
	for i := 0; i < 4; i++ {
		orders = append(orders, p.Allocate(uint64(i), uint64(i), orderbook.Limit, orderbook.Buy, orderbook.GoodTillCancel, 100, 1))
	}
	fifth := p.Allocate(99, 99, orderbook.Limit, orderbook.Buy, orderbook.GoodTillCancel, 100, 1)
	for _, o := range orders {
		p.Release(o)
	}
	if p.Len() != 4 {
		t.Fatalf("Len() before crossing high water mark = %d, want 4", p.Len())
	}

	p.Release(fifth)
	if p.Len() != 2 {
		t.Fatalf("Len() after trim = %d, want low water mark 2", p.Len())
	}
}

func TestOrderPoolPutAnyRejectsWrongType(t *testing.T) {
	p := New()
	defer func() {
		if recover() == nil {
			t.Fatalf("PutAny(non-*Order) did not panic")
		}
	}()
	p.PutAny("not an order")
}

func TestOrderPoolPutAnyReleasesOrder(t *testing.T) {
	p := New()
	o := p.Allocate(1, 1, orderbook.Limit, orderbook.Buy, orderbook.GoodTillCancel, 100, 1)
	p.PutAny(o)
	if p.Len() != 1 {
		t.Fatalf("Len() after PutAny = %d, want 1", p.Len())
	}
}
