// Package engine implements the matching engine (component F): the
// state machine that consumes an incoming order, walks the opposite
// side of the book in price-time priority, produces trades, and
// resolves the four order-type/time-in-force regimes from spec §4.F.
//
// The engine is strictly single-threaded and non-suspending (spec §5):
// OnNewOrder and OnCancelOrder run to completion with no internal
// yield points and no allocation beyond what pool.OrderPool amortises.
package engine

import (
	"obsidian/domain/orderbook"
	"obsidian/domain/trade"
)

// OrderAllocator is the subset of pool.OrderPool's contract the engine
// needs (component B, spec §4.B): allocate a fresh record and release
// a terminal one. It is expressed as an interface here, rather than a
// concrete *pool.OrderPool, so engine has no import of package pool —
// callers may wire the plain bounded pool directly, or a decorator
// that defers the actual release through epoch-based reclamation for
// safe concurrent snapshot reads (SPEC_FULL §3.3) — without the engine
// knowing the difference.
type OrderAllocator interface {
	Allocate(id, seqID uint64, typ orderbook.OrderType, side orderbook.Side, tif orderbook.TimeInForce, price, qty uint32) *orderbook.Order
	Release(o *orderbook.Order)
}

// MatchingEngine orchestrates matching for an incoming order against
// the opposite side of book, honouring time-in-force and order type,
// and drives order lifecycle transitions (spec §4.F).
type MatchingEngine struct {
	book *orderbook.OrderBook
	pool OrderAllocator
	sink trade.Sink
}

// New wires an engine around a book, pool, and trade sink. Per spec §9
// the pool is an engine-owned instance passed through construction,
// not ambient/global state.
func New(book *orderbook.OrderBook, p OrderAllocator, sink trade.Sink) *MatchingEngine {
	if sink == nil {
		sink = trade.DiscardSink{}
	}
	return &MatchingEngine{book: book, pool: p, sink: sink}
}

// Book exposes the underlying order book for read-only queries
// (snapshots, best bid/ask) by external callers such as the gateway.
func (e *MatchingEngine) Book() *orderbook.OrderBook {
	return e.book
}

// OnNewOrder matches o per its type and time-in-force, emits trades to
// the sink, inserts residual quantity into the book when eligible, and
// releases o back to the pool once it reaches a terminal state
// (Filled or Cancelled). There is no return value for the match
// outcome itself — per spec §4.F, outcomes are observed via o's final
// Status and the trades recorded on the sink. A non-nil error
// indicates a fatal logic violation (spec §7); the caller must not
// continue issuing requests to this engine afterward.
func (e *MatchingEngine) OnNewOrder(o *orderbook.Order) error {
	if o.Type == orderbook.Market && o.TIF == orderbook.GoodTillCancel {
		return fatalf(o.ID, "market order combined with GoodTillCancel time-in-force (invalid combination; the gateway must reject this before it reaches the engine)")
	}

	switch o.TIF {
	case orderbook.GoodTillCancel:
		return e.handleGTC(o)
	case orderbook.ImmediateOrCancel:
		return e.handleIOC(o)
	case orderbook.FillOrKill:
		return e.handleFOK(o)
	default:
		return fatalf(o.ID, "unknown time-in-force %d", o.TIF)
	}
}

// OnCancelOrder delegates to OrderBook.Cancel and releases the
// cancelled order back to the pool. Silent no-op on an unknown id —
// late cancels after a fill are expected in practice (spec §7).
func (e *MatchingEngine) OnCancelOrder(id uint64) error {
	o, err := e.book.Cancel(id)
	if err != nil {
		return fatalf(id, "cancel of a filled order reached the book (%v)", err)
	}
	if o == nil {
		return nil
	}
	e.pool.Release(o)
	return nil
}

func (e *MatchingEngine) handleGTC(o *orderbook.Order) error {
	if err := e.walk(o); err != nil {
		return err
	}
	if o.Remaining() > 0 {
		if err := e.book.Add(o); err != nil {
			return fatalf(o.ID, "resting a GTC limit order: %v", err)
		}
		return nil
	}
	e.pool.Release(o)
	return nil
}

func (e *MatchingEngine) handleIOC(o *orderbook.Order) error {
	if err := e.walk(o); err != nil {
		return err
	}
	if o.Remaining() > 0 {
		if err := o.Cancel(); err != nil {
			return fatalf(o.ID, "cancelling IOC residual: %v", err)
		}
	}
	e.pool.Release(o)
	return nil
}

func (e *MatchingEngine) handleFOK(o *orderbook.Order) error {
	trials, achievable := e.fokDryRun(o)
	if !achievable {
		if err := o.Cancel(); err != nil {
			return fatalf(o.ID, "cancelling FOK that cannot be fully filled: %v", err)
		}
		e.pool.Release(o)
		return nil
	}
	if err := e.fokCommit(o, trials); err != nil {
		return err
	}
	e.pool.Release(o)
	return nil
}

// walk repeatedly crosses o against the best opposite level while
// remaining quantity and the cross predicate both hold (spec §4.F
// "Walk matching"). Used by GTC and IOC.
func (e *MatchingEngine) walk(o *orderbook.Order) error {
	for o.Remaining() > 0 {
		lvl := e.book.BestOpposite(o.Side)
		if lvl == nil {
			return nil
		}
		if !crossed(o, lvl.Price) {
			return nil
		}

		resting := lvl.Head()
		if resting == nil {
			return fatalf(o.ID, "best price level has no head order")
		}
		if resting.Side == o.Side {
			return fatalf(o.ID, "same-side match attempted against order %d", resting.ID)
		}
		if resting.Status == orderbook.Filled || resting.Status == orderbook.Cancelled {
			return fatalf(o.ID, "matched against non-resting order %d (status %v)", resting.ID, resting.Status)
		}

		q := minUint32(o.Remaining(), resting.Remaining())
		price := resting.Price

		if err := o.Fill(q); err != nil {
			return fatalf(o.ID, "aggressor fill: %v", err)
		}
		if err := resting.Fill(q); err != nil {
			return fatalf(resting.ID, "resting fill: %v", err)
		}

		e.emit(o, resting, price, q)

		if resting.Remaining() == 0 {
			e.book.Remove(resting.ID)
			e.pool.Release(resting)
		}
	}
	return nil
}

// trialFill is one step of a Phase 1 FOK dry-run: a resting order and
// the quantity Phase 2 will take from it.
type trialFill struct {
	order *orderbook.Order
	qty   uint32
}

// fokDryRun scans the opposite side in priority order without
// mutating anything, accumulating trial fills until either the
// incoming order's full quantity is achievable or the scan runs out
// of reachable levels (spec §4.F "FOK matching" Phase 1).
func (e *MatchingEngine) fokDryRun(o *orderbook.Order) ([]trialFill, bool) {
	var trials []trialFill
	var acc uint32

	lvl := e.book.BestOpposite(o.Side)
	for lvl != nil {
		if o.Type == orderbook.Limit && !crossed(o, lvl.Price) {
			// Level-crossing limit: remaining levels are only worse
			// priced, so the scan is done (spec §4.F edge case).
			break
		}
		for ord := lvl.Head(); ord != nil && acc < o.InitialQty; ord = ord.Next() {
			take := minUint32(o.InitialQty-acc, ord.Remaining())
			trials = append(trials, trialFill{order: ord, qty: take})
			acc += take
		}
		if acc >= o.InitialQty {
			break
		}
		lvl = e.book.NextOpposite(o.Side, lvl)
	}

	return trials, acc >= o.InitialQty
}

// fokCommit replays a trial set produced by a successful fokDryRun,
// executing each fill, emitting trades, and removing resting orders
// that become fully filled (spec §4.F Phase 2). Only ever invoked
// after Phase 1 succeeded, so o is guaranteed to reach Filled.
func (e *MatchingEngine) fokCommit(o *orderbook.Order, trials []trialFill) error {
	for _, tr := range trials {
		price := tr.order.Price

		if err := o.Fill(tr.qty); err != nil {
			return fatalf(o.ID, "FOK aggressor fill: %v", err)
		}
		if err := tr.order.Fill(tr.qty); err != nil {
			return fatalf(tr.order.ID, "FOK resting fill: %v", err)
		}

		e.emit(o, tr.order, price, tr.qty)

		if tr.order.Remaining() == 0 {
			e.book.Remove(tr.order.ID)
			e.pool.Release(tr.order)
		}
	}
	return nil
}

// emit records a trade between the incoming order and a resting order,
// assigning buy/sell ids by side regardless of which was the
// aggressor (spec §4.F step 3). trade_price is always the resting
// order's price — price improvement accrues to the aggressor (spec
// §3.C invariant).
func (e *MatchingEngine) emit(incoming, resting *orderbook.Order, price, qty uint32) {
	buy, sell := sidesOf(incoming, resting)
	e.sink.RecordTrade(trade.Trade{
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		Price:       price,
		Quantity:    qty,
		BuyOrderType: trade.OrderSnapshot{
			Price: buy.Price,
			Type:  buy.Type,
			TIF:   buy.TIF,
		},
		SellOrderType: trade.OrderSnapshot{
			Price: sell.Price,
			Type:  sell.Type,
			TIF:   sell.TIF,
		},
		SeqID: incoming.SeqID,
	})
}

func sidesOf(a, b *orderbook.Order) (buy, sell *orderbook.Order) {
	if a.Side == orderbook.Buy {
		return a, b
	}
	return b, a
}

// crossed reports whether incoming crosses a resting level priced at
// restingPrice (spec §4.F "Price cross predicate"). Market orders
// cross any non-empty opposite level; the caller is responsible for
// confirming the level is non-empty before calling crossed.
func crossed(incoming *orderbook.Order, restingPrice uint32) bool {
	if incoming.Type == orderbook.Market {
		return true
	}
	if incoming.Side == orderbook.Buy {
		return restingPrice <= incoming.Price
	}
	return restingPrice >= incoming.Price
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
