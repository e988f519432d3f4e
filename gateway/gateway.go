// Package gateway implements the admission gateway (component G, spec
// §6): the external boundary that validates incoming requests, drives
// the entry WAL, serialises calls into the single-writer matching
// engine, and maps engine outcomes back to an accept/reject contract.
//
// None of this is part of the specified core (A–F) — the gateway is
// explicitly an external collaborator (spec §1, §6) — but a runnable
// instance of this system needs exactly one boundary like this, so it
// lives here rather than duplicated across every transport (gRPC, and
// whatever else might front it).
package gateway

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"obsidian/domain/orderbook"
	"obsidian/domain/trade"
	"obsidian/engine"
	"obsidian/infra/kafka"
	"obsidian/infra/memory"
	"obsidian/infra/sequence"
	entrywal "obsidian/infra/wal/entry"
	"obsidian/jobs/broadcaster"
	"obsidian/pool"
	"obsidian/snapshot"
)

// Reason is the user-visible rejection code returned from Submit/Cancel
// (spec §6's gateway contract).
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonInvalidPrice          Reason = "InvalidPrice"
	ReasonInvalidQuantity       Reason = "InvalidQuantity"
	ReasonInvalidTIF            Reason = "InvalidTIF"
	ReasonInsufficientLiquidity Reason = "InsufficientLiquidity"
	ReasonOther                 Reason = "Other"
)

// Result is returned from both Submit and Cancel.
type Result struct {
	OrderID  uint64
	Accepted bool
	Reason   Reason
}

// SubmitRequest is the caller-assigned shape of an incoming order,
// prior to pool allocation.
type SubmitRequest struct {
	OrderID uint64
	Side    orderbook.Side
	Type    orderbook.OrderType
	TIF     orderbook.TimeInForce
	Price   uint32
	Qty     uint32
}

// Gateway wires the engine to the durability and dissemination
// infrastructure around it: entry WAL (replay), trade outbox
// (dissemination), sequencer, epoch-based safe reads, and snapshots.
type Gateway struct {
	// mu serialises Submit/Cancel/AdvanceEpoch, so the engine, the
	// retire ring and the pool only ever see one caller at a time.
	// The engine itself takes no locks
	// (spec §5) — if the gateway is ever called concurrently (e.g. from
	// multiple gRPC streams), this is the single-consumer queue spec §5
	// requires the gateway to provide.
	mu sync.Mutex

	book   *orderbook.OrderBook
	engine *engine.MatchingEngine
	pool   *pool.OrderPool
	ring   *memory.RetireRing
	reader *snapshot.Reader

	seq      *sequence.Sequencer
	tradeSeq *sequence.Sequencer

	entryWAL    *entrywal.WAL
	entryWALDir string
	sink        *outboxSink

	// events is a best-effort order-acceptance notification stream,
	// separate from the durably-outboxed trade stream: UI/monitoring
	// consumers that can tolerate the occasional dropped message
	// subscribe here instead of paying for pebble-backed at-least-once
	// delivery they don't need.
	events      *kafka.Producer
	eventsTopic string
}

// Config bundles the directories and sizes the gateway's infra needs.
type Config struct {
	EntryWALDir      string
	EntrySegmentSize int64
	RingSize         uint64

	// EventsBrokers/EventsTopic wire the best-effort order-event stream.
	// Leave EventsTopic empty to disable it.
	EventsBrokers []string
	EventsTopic   string
}

// New constructs a gateway around a freshly opened exit outbox
// broadcaster and entry WAL. The book starts empty; callers needing
// replay should call Replay before serving traffic.
func New(cfg Config, bc *broadcaster.Broadcaster) (*Gateway, error) {
	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:         cfg.EntryWALDir,
		SegmentSize: cfg.EntrySegmentSize,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: entry WAL open: %w", err)
	}

	ringSize := cfg.RingSize
	if ringSize == 0 {
		ringSize = 1 << 16
	}

	book := orderbook.NewOrderBook()
	p := pool.New()
	ring := memory.NewRetireRing(ringSize)
	rp := newRetiringPool(p, ring)
	sink := &outboxSink{bc: bc, seq: sequence.New(0)}

	var events *kafka.Producer
	if cfg.EventsTopic != "" {
		events = kafka.NewProducer(cfg.EventsBrokers, cfg.EventsTopic)
	}

	return &Gateway{
		book:        book,
		engine:      engine.New(book, rp, sink),
		pool:        p,
		ring:        ring,
		reader:      snapshot.NewReader(),
		seq:         sequence.New(0),
		tradeSeq:    sink.seq,
		entryWAL:    entryWAL,
		entryWALDir: cfg.EntryWALDir,
		sink:        sink,
		events:      events,
		eventsTopic: cfg.EventsTopic,
	}, nil
}

// publishEvent best-effort notifies the order-event stream. Failures
// are logged, not propagated — this stream has no durability
// guarantee by design.
func (g *Gateway) publishEvent(orderID uint64, kind string) {
	if g.events == nil {
		return
	}
	key := []byte(fmt.Sprintf("%d", orderID))
	val := []byte(kind)
	go func() {
		if err := g.events.Send(context.Background(), key, val); err != nil {
			log.Printf("gateway: order event publish failed for order %d: %v", orderID, err)
		}
	}()
}

// outboxSink adapts trade.Sink to the exit outbox: every trade gets
// its own sequence id (independent of order SeqID) and is durably
// enqueued before the engine call returns, satisfying the trade sink
// contract's "never fails" (spec §6) via a fire-and-forget enqueue —
// a pebble write error here indicates a fatal local-disk failure, not
// a rejectable condition, and is logged rather than surfaced to the
// submitter.
type outboxSink struct {
	bc  *broadcaster.Broadcaster
	seq *sequence.Sequencer
}

func (s *outboxSink) RecordTrade(t trade.Trade) {
	seq := s.seq.Next()
	if err := s.bc.EnqueueTrade(seq, t); err != nil {
		log.Printf("gateway: trade outbox enqueue failed for trade seq %d: %v", seq, err)
	}
}

// Submit validates req per spec §6's pre-engine checks, appends it to
// the entry WAL, and hands it to the engine. A non-nil error return is
// a fatal logic violation (spec §7) the caller must treat as
// unrecoverable; a rejected-but-well-formed request instead comes back
// as Result{Accepted: false}.
func (g *Gateway) Submit(req SubmitRequest) (Result, error) {
	if reason := validateSubmit(req); reason != ReasonNone {
		return Result{OrderID: req.OrderID, Accepted: false, Reason: reason}, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	seqID := g.seq.Next()

	if err := g.appendSubmit(req, seqID); err != nil {
		return Result{OrderID: req.OrderID, Accepted: false, Reason: ReasonOther}, nil
	}

	o := g.pool.Allocate(req.OrderID, seqID, req.Type, req.Side, req.TIF, req.Price, req.Qty)

	if err := g.engine.OnNewOrder(o); err != nil {
		log.Fatalf("gateway: fatal logic violation on order %d: %v", req.OrderID, err)
	}

	// o may have been released back to the pool by the engine if it
	// reached a terminal state; o.Status still reflects its last value
	// since Release never resets fields (spec §3/§4.B), so this read is
	// safe as long as it happens before another Allocate can recycle it
	// — guaranteed here because g.mu is still held.
	if (req.TIF == orderbook.ImmediateOrCancel || req.TIF == orderbook.FillOrKill) && o.Status == orderbook.Cancelled {
		g.publishEvent(req.OrderID, "rejected_insufficient_liquidity")
		return Result{OrderID: req.OrderID, Accepted: false, Reason: ReasonInsufficientLiquidity}, nil
	}

	g.publishEvent(req.OrderID, "accepted")
	return Result{OrderID: req.OrderID, Accepted: true, Reason: ReasonNone}, nil
}

// Cancel requests cancellation of a resting order. Per spec §7, an
// unknown id is a silent accept-no-op, not a rejection.
func (g *Gateway) Cancel(orderID uint64) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.appendCancel(orderID, g.seq.Next()); err != nil {
		return Result{OrderID: orderID, Accepted: false, Reason: ReasonOther}, nil
	}

	if err := g.engine.OnCancelOrder(orderID); err != nil {
		log.Fatalf("gateway: fatal logic violation cancelling order %d: %v", orderID, err)
	}

	g.publishEvent(orderID, "cancelled")
	return Result{OrderID: orderID, Accepted: true, Reason: ReasonNone}, nil
}

// Snapshot returns every resting order across both sides, in priority
// order, as a read-only point-in-time view. Safe to call concurrently
// with Submit/Cancel: it enters a reader epoch so any order retired
// mid-walk by the engine is kept alive until this call exits (SPEC_FULL
// §3.3), without taking g.mu and blocking the matching hot path.
func (g *Gateway) Snapshot() []orderbook.Order {
	g.reader.Begin()
	defer g.reader.End()

	out := make([]orderbook.Order, 0, g.book.Len())
	g.book.Bids(func(lvl *orderbook.PriceLevel) {
		for o := lvl.Head(); o != nil; o = o.Next() {
			out = append(out, *o)
		}
	})
	g.book.Asks(func(lvl *orderbook.PriceLevel) {
		for o := lvl.Head(); o != nil; o = o.Next() {
			out = append(out, *o)
		}
	})
	return out
}

// AdvanceEpoch drains retired order records that are no longer visible
// to any in-flight Snapshot reader back into the bounded pool. Intended
// to be called periodically by a background ticker owned by the
// process, not the engine (SPEC_FULL §3.3).
func (g *Gateway) AdvanceEpoch() {
	g.mu.Lock()
	defer g.mu.Unlock()
	memory.AdvanceEpochAndReclaim(g.ring, g.pool, g.reader.Epoch())
}

// Close releases the gateway's durable infra.
func (g *Gateway) Close() error {
	if g.events != nil {
		_ = g.events.Close()
	}
	return g.entryWAL.Close()
}

func validateSubmit(req SubmitRequest) Reason {
	if req.Price == 0 && req.Type != orderbook.Market {
		return ReasonInvalidPrice
	}
	if req.Qty == 0 {
		return ReasonInvalidQuantity
	}
	if req.Type == orderbook.Market && req.TIF == orderbook.GoodTillCancel {
		return ReasonInvalidTIF
	}
	return ReasonNone
}

func (g *Gateway) appendSubmit(req SubmitRequest, seqID uint64) error {
	return g.entryWAL.Append(&entrywal.Record{
		Kind: entrywal.KindSubmit,
		Seq:  seqID,
		Time: time.Now().UnixNano(),
		Payload: entrywal.EncodeSubmit(entrywal.SubmitPayload{
			OrderID: req.OrderID,
			Side:    uint8(req.Side),
			Type:    uint8(req.Type),
			TIF:     uint8(req.TIF),
			Price:   req.Price,
			Qty:     req.Qty,
		}),
	})
}

func (g *Gateway) appendCancel(orderID uint64, seqID uint64) error {
	return g.entryWAL.Append(&entrywal.Record{
		Kind:    entrywal.KindCancel,
		Seq:     seqID,
		Time:    time.Now().UnixNano(),
		Payload: entrywal.EncodeCancel(orderID),
	})
}
