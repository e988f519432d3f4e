// Package trade holds the immutable result of a single fill between
// two orders (component C). A Trade is produced by engine.MatchingEngine
// and handed to a Sink (the external, write-only trade history
// collaborator from spec §2.D) — trade never mutates after creation.
package trade

import (
	"encoding/binary"
	"fmt"

	"obsidian/domain/orderbook"
)

// Trade is an 8-tuple fill record plus a snapshot of each side's
// original price, order type and time-in-force, carried for later
// replay/audit (spec §3.C).
type Trade struct {
	BuyOrderID  uint64
	SellOrderID uint64
	Price       uint32
	Quantity    uint32

	BuyOrderType  OrderSnapshot
	SellOrderType OrderSnapshot

	SeqID uint64
}

// OrderSnapshot captures the immutable parameters of one side of a
// trade at the moment it filled, independent of that order's later
// lifecycle: its original limit price (0 for a Market order), type,
// and time-in-force.
type OrderSnapshot struct {
	Price uint32
	Type  orderbook.OrderType
	TIF   orderbook.TimeInForce
}

// Sink is the external, append-only trade history collaborator (spec
// §2.D / §6): "record_trade(trade) — append; never fails; called
// during matching." It is a core-side interface only; persistence and
// dissemination live outside the core (see infra/wal/exit,
// infra/kafka, jobs/broadcaster).
type Sink interface {
	RecordTrade(t Trade)
}

// DiscardSink is a no-op Sink, useful for tests and benchmarks that
// don't care about trade history.
type DiscardSink struct{}

func (DiscardSink) RecordTrade(Trade) {}

// CollectingSink accumulates trades in memory, useful for tests that
// assert on emitted trades (spec §8 property tests, S1-S7).
type CollectingSink struct {
	Trades []Trade
}

func (s *CollectingSink) RecordTrade(t Trade) {
	s.Trades = append(s.Trades, t)
}

// wire layout: [buyID:8][sellID:8][price:4][qty:4][buyPrice:4][buyType:1]
// [buyTIF:1][sellPrice:4][sellType:1][sellTIF:1][seqID:8] — 44 bytes,
// fixed width since a Trade carries no variable-length fields.
const encodedSize = 8 + 8 + 4 + 4 + 4 + 1 + 1 + 4 + 1 + 1 + 8

// Encode serialises t for the outbox/broadcast path (infra/wal/exit,
// jobs/broadcaster): a trade is a terminal fact, so this is a plain
// fixed-width encoding rather than a schema that needs to evolve.
func Encode(t Trade) []byte {
	buf := make([]byte, encodedSize)
	binary.BigEndian.PutUint64(buf[0:8], t.BuyOrderID)
	binary.BigEndian.PutUint64(buf[8:16], t.SellOrderID)
	binary.BigEndian.PutUint32(buf[16:20], t.Price)
	binary.BigEndian.PutUint32(buf[20:24], t.Quantity)
	binary.BigEndian.PutUint32(buf[24:28], t.BuyOrderType.Price)
	buf[28] = byte(t.BuyOrderType.Type)
	buf[29] = byte(t.BuyOrderType.TIF)
	binary.BigEndian.PutUint32(buf[30:34], t.SellOrderType.Price)
	buf[34] = byte(t.SellOrderType.Type)
	buf[35] = byte(t.SellOrderType.TIF)
	binary.BigEndian.PutUint64(buf[36:44], t.SeqID)
	return buf
}

// Decode reverses Encode.
func Decode(b []byte) (Trade, error) {
	if len(b) != encodedSize {
		return Trade{}, fmt.Errorf("trade: encoded record has wrong length %d, want %d", len(b), encodedSize)
	}
	return Trade{
		BuyOrderID:  binary.BigEndian.Uint64(b[0:8]),
		SellOrderID: binary.BigEndian.Uint64(b[8:16]),
		Price:       binary.BigEndian.Uint32(b[16:20]),
		Quantity:    binary.BigEndian.Uint32(b[20:24]),
		BuyOrderType: OrderSnapshot{
			Price: binary.BigEndian.Uint32(b[24:28]),
			Type:  orderbook.OrderType(b[28]),
			TIF:   orderbook.TimeInForce(b[29]),
		},
		SellOrderType: OrderSnapshot{
			Price: binary.BigEndian.Uint32(b[30:34]),
			Type:  orderbook.OrderType(b[34]),
			TIF:   orderbook.TimeInForce(b[35]),
		},
		SeqID: binary.BigEndian.Uint64(b[36:44]),
	}, nil
}
