package engine

import (
	"testing"

	"obsidian/domain/orderbook"
	"obsidian/domain/trade"
	"obsidian/pool"
)

func newTestEngine() (*MatchingEngine, *orderbook.OrderBook, *pool.OrderPool, *trade.CollectingSink) {
	book := orderbook.NewOrderBook()
	p := pool.New()
	sink := &trade.CollectingSink{}
	return New(book, p, sink), book, p, sink
}

func rest(t *testing.T, e *MatchingEngine, p *pool.OrderPool, id uint64, side orderbook.Side, price, qty uint32) *orderbook.Order {
	t.Helper()
	o := p.Allocate(id, id, orderbook.Limit, side, orderbook.GoodTillCancel, price, qty)
	if err := e.OnNewOrder(o); err != nil {
		t.Fatalf("resting order %d: %v", id, err)
	}
	return o
}

// S1: partial match.
func TestScenarioPartialMatch(t *testing.T) {
	e, book, p, sink := newTestEngine()
	rest(t, e, p, 10, orderbook.Buy, 100, 50)

	incoming := p.Allocate(11, 11, orderbook.Limit, orderbook.Sell, orderbook.GoodTillCancel, 100, 20)
	if err := e.OnNewOrder(incoming); err != nil {
		t.Fatalf("OnNewOrder: %v", err)
	}

	if len(sink.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(sink.Trades))
	}
	tr := sink.Trades[0]
	if tr.Price != 100 || tr.Quantity != 20 {
		t.Fatalf("trade = (%d, %d), want (100, 20)", tr.Price, tr.Quantity)
	}

	resting := book.Lookup(10)
	if resting == nil || resting.Status != orderbook.Partial || resting.Remaining() != 30 {
		t.Fatalf("resting order 10 = %+v, want Partial/30 remaining", resting)
	}
	if incoming.Status != orderbook.Filled {
		t.Fatalf("incoming status = %v, want Filled", incoming.Status)
	}
}

// S2: three-level price priority.
func TestScenarioThreeLevelPricePriority(t *testing.T) {
	e, book, p, sink := newTestEngine()
	rest(t, e, p, 1, orderbook.Sell, 98, 10)
	rest(t, e, p, 2, orderbook.Sell, 99, 15)
	rest(t, e, p, 3, orderbook.Sell, 100, 20)

	incoming := p.Allocate(4, 4, orderbook.Limit, orderbook.Buy, orderbook.GoodTillCancel, 100, 35)
	if err := e.OnNewOrder(incoming); err != nil {
		t.Fatalf("OnNewOrder: %v", err)
	}

	if len(sink.Trades) != 3 {
		t.Fatalf("trades = %d, want 3", len(sink.Trades))
	}
	want := [][2]uint32{{98, 10}, {99, 15}, {100, 10}}
	for i, w := range want {
		if sink.Trades[i].Price != w[0] || sink.Trades[i].Quantity != w[1] {
			t.Fatalf("trade[%d] = (%d, %d), want (%d, %d)", i, sink.Trades[i].Price, sink.Trades[i].Quantity, w[0], w[1])
		}
	}

	resid := book.Lookup(3)
	if resid == nil || resid.Remaining() != 10 {
		t.Fatalf("residual sell@100 = %+v, want 10 remaining", resid)
	}
}

// S3: IOC partial.
func TestScenarioIOCPartial(t *testing.T) {
	e, book, p, sink := newTestEngine()
	rest(t, e, p, 1, orderbook.Sell, 100, 10)
	rest(t, e, p, 2, orderbook.Sell, 100, 5)

	incoming := p.Allocate(3, 3, orderbook.Limit, orderbook.Buy, orderbook.ImmediateOrCancel, 100, 25)
	if err := e.OnNewOrder(incoming); err != nil {
		t.Fatalf("OnNewOrder: %v", err)
	}

	if len(sink.Trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(sink.Trades))
	}
	var total uint32
	for _, tr := range sink.Trades {
		total += tr.Quantity
	}
	if total != 15 {
		t.Fatalf("total filled = %d, want 15", total)
	}
	if incoming.Status != orderbook.Cancelled {
		t.Fatalf("incoming status = %v, want Cancelled", incoming.Status)
	}
	if book.BestAsk() != nil {
		t.Fatalf("ask side should be empty, got best ask %+v", book.BestAsk())
	}
}

// S4: FOK insufficient.
func TestScenarioFOKInsufficient(t *testing.T) {
	e, book, p, sink := newTestEngine()
	rest(t, e, p, 1, orderbook.Sell, 100, 20)
	rest(t, e, p, 2, orderbook.Sell, 100, 5)

	incoming := p.Allocate(3, 3, orderbook.Limit, orderbook.Buy, orderbook.FillOrKill, 100, 30)
	if err := e.OnNewOrder(incoming); err != nil {
		t.Fatalf("OnNewOrder: %v", err)
	}

	if len(sink.Trades) != 0 {
		t.Fatalf("trades = %d, want 0", len(sink.Trades))
	}
	if incoming.Status != orderbook.Cancelled {
		t.Fatalf("incoming status = %v, want Cancelled", incoming.Status)
	}
	if lvl := book.BestAsk(); lvl == nil || lvl.TotalQty != 25 {
		t.Fatalf("book should be unchanged (25 resting), got %+v", lvl)
	}
}

// S5: FOK across levels success.
func TestScenarioFOKAcrossLevelsSuccess(t *testing.T) {
	e, book, p, sink := newTestEngine()
	rest(t, e, p, 1, orderbook.Sell, 98, 50)
	rest(t, e, p, 2, orderbook.Sell, 99, 50)
	rest(t, e, p, 3, orderbook.Sell, 100, 100)

	incoming := p.Allocate(4, 4, orderbook.Limit, orderbook.Buy, orderbook.FillOrKill, 100, 150)
	if err := e.OnNewOrder(incoming); err != nil {
		t.Fatalf("OnNewOrder: %v", err)
	}

	if len(sink.Trades) != 3 {
		t.Fatalf("trades = %d, want 3", len(sink.Trades))
	}
	want := [][2]uint32{{98, 50}, {99, 50}, {100, 50}}
	for i, w := range want {
		if sink.Trades[i].Price != w[0] || sink.Trades[i].Quantity != w[1] {
			t.Fatalf("trade[%d] = (%d, %d), want (%d, %d)", i, sink.Trades[i].Price, sink.Trades[i].Quantity, w[0], w[1])
		}
	}
	if incoming.Status != orderbook.Filled {
		t.Fatalf("incoming status = %v, want Filled", incoming.Status)
	}
	resid := book.Lookup(3)
	if resid == nil || resid.Remaining() != 50 {
		t.Fatalf("residual sell@100 = %+v, want 50 remaining", resid)
	}
}

// S6: market order exhausts book.
func TestScenarioMarketOrderExhaustsBook(t *testing.T) {
	e, book, p, sink := newTestEngine()
	rest(t, e, p, 1, orderbook.Sell, 100, 10)
	rest(t, e, p, 2, orderbook.Sell, 101, 10)

	incoming := p.Allocate(3, 3, orderbook.Market, orderbook.Buy, orderbook.ImmediateOrCancel, 0, 30)
	if err := e.OnNewOrder(incoming); err != nil {
		t.Fatalf("OnNewOrder: %v", err)
	}

	if len(sink.Trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(sink.Trades))
	}
	want := [][2]uint32{{100, 10}, {101, 10}}
	for i, w := range want {
		if sink.Trades[i].Price != w[0] || sink.Trades[i].Quantity != w[1] {
			t.Fatalf("trade[%d] = (%d, %d), want (%d, %d)", i, sink.Trades[i].Price, sink.Trades[i].Quantity, w[0], w[1])
		}
	}
	if incoming.Status != orderbook.Cancelled {
		t.Fatalf("incoming status = %v, want Cancelled", incoming.Status)
	}
	if book.BestAsk() != nil {
		t.Fatalf("book should be empty, got best ask %+v", book.BestAsk())
	}
}

// S7: cancel of partially filled.
func TestScenarioCancelOfPartiallyFilled(t *testing.T) {
	e, book, p, _ := newTestEngine()
	rest(t, e, p, 1200, orderbook.Buy, 100, 50)

	sell := p.Allocate(2, 2, orderbook.Limit, orderbook.Sell, orderbook.GoodTillCancel, 100, 20)
	if err := e.OnNewOrder(sell); err != nil {
		t.Fatalf("OnNewOrder: %v", err)
	}

	resting := book.Lookup(1200)
	if resting == nil || resting.Remaining() != 30 {
		t.Fatalf("order 1200 before cancel = %+v, want 30 remaining", resting)
	}

	if err := e.OnCancelOrder(1200); err != nil {
		t.Fatalf("OnCancelOrder: %v", err)
	}
	if resting.Status != orderbook.Cancelled {
		t.Fatalf("order 1200 status = %v, want Cancelled", resting.Status)
	}
	if book.BestBid() != nil {
		t.Fatalf("bids should be empty after cancel, got %+v", book.BestBid())
	}
}

// P4: no crossed book, checked across a sequence of resting orders
// that never cross.
func TestPropertyNoCrossedBookAfterNonCrossingRests(t *testing.T) {
	e, book, p, _ := newTestEngine()
	rest(t, e, p, 1, orderbook.Buy, 100, 10)
	rest(t, e, p, 2, orderbook.Sell, 105, 10)

	if bid, ask := book.BestBid(), book.BestAsk(); bid.Price >= ask.Price {
		t.Fatalf("book crossed: bid=%d ask=%d", bid.Price, ask.Price)
	}
}

// P6: non-resting TIF — IOC/FOK never end up indexed in the book.
func TestPropertyIOCAndFOKNeverRest(t *testing.T) {
	e, book, p, _ := newTestEngine()
	rest(t, e, p, 1, orderbook.Sell, 100, 5)

	ioc := p.Allocate(2, 2, orderbook.Limit, orderbook.Buy, orderbook.ImmediateOrCancel, 100, 10)
	if err := e.OnNewOrder(ioc); err != nil {
		t.Fatalf("OnNewOrder(ioc): %v", err)
	}
	if book.Lookup(2) != nil {
		t.Fatalf("IOC order 2 is resting in the book")
	}

	fok := p.Allocate(3, 3, orderbook.Limit, orderbook.Buy, orderbook.FillOrKill, 100, 10)
	if err := e.OnNewOrder(fok); err != nil {
		t.Fatalf("OnNewOrder(fok): %v", err)
	}
	if book.Lookup(3) != nil {
		t.Fatalf("FOK order 3 is resting in the book")
	}
}

// P8: index consistency — every indexed order dereferences to itself
// and sits in New or Partial.
func TestPropertyIndexConsistency(t *testing.T) {
	e, book, p, _ := newTestEngine()
	rest(t, e, p, 1, orderbook.Buy, 100, 10)
	rest(t, e, p, 2, orderbook.Buy, 100, 5)

	sell := p.Allocate(3, 3, orderbook.Limit, orderbook.Sell, orderbook.GoodTillCancel, 100, 8)
	if err := e.OnNewOrder(sell); err != nil {
		t.Fatalf("OnNewOrder: %v", err)
	}

	book.Bids(func(lvl *orderbook.PriceLevel) {
		for o := lvl.Head(); o != nil; o = o.Next() {
			if got := book.Lookup(o.ID); got != o {
				t.Fatalf("Lookup(%d) = %v, want the resting order itself", o.ID, got)
			}
			if o.Status != orderbook.New && o.Status != orderbook.Partial {
				t.Fatalf("resting order %d has status %v, want New or Partial", o.ID, o.Status)
			}
		}
	})
}

// Rejects the illegal Market+GTC combination as a fatal engine error,
// per the gateway/engine contract's pre-condition.
func TestOnNewOrderRejectsMarketWithGTC(t *testing.T) {
	e, _, p, _ := newTestEngine()
	o := p.Allocate(1, 1, orderbook.Market, orderbook.Buy, orderbook.GoodTillCancel, 0, 10)
	if err := e.OnNewOrder(o); err == nil {
		t.Fatalf("OnNewOrder(Market+GTC) succeeded, want an error")
	}
}

func TestOnCancelOrderUnknownIDIsNoOp(t *testing.T) {
	e, _, _, _ := newTestEngine()
	if err := e.OnCancelOrder(999); err != nil {
		t.Fatalf("OnCancelOrder(999) on empty book: %v", err)
	}
}
