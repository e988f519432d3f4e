package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"

	"obsidian/domain/orderbook"
	"obsidian/pool"
)

// Load reads the snapshot at path, if any, and re-inserts every order
// into book via p. Returns 0 with no error if no snapshot exists yet
// (snapshot is optional — a gateway with no snapshot just replays its
// full entry WAL).
func Load(path string, book *orderbook.OrderBook, p *pool.OrderPool) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, err
	}

	for _, e := range s.Orders {
		o := p.Allocate(e.ID, e.SeqID, orderbook.OrderType(e.Type), orderbook.Side(e.Side), orderbook.TimeInForce(e.TIF), e.Price, e.InitialQty)
		if err := book.Add(o); err != nil {
			return 0, fmt.Errorf("snapshot: re-adding order %d: %w", e.ID, err)
		}
		filled := e.InitialQty - e.RemainingQty
		if err := o.Fill(filled); err != nil {
			return 0, fmt.Errorf("snapshot: restoring order %d: %w", e.ID, err)
		}
	}

	return s.Seq, nil
}
