package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"obsidian/domain/orderbook"
)

type Writer struct {
	Dir string
}

// Write serializes every resting order in book to a single snapshot
// file under w.Dir, tagged with seq so a loader knows which entry-WAL
// records it still needs to replay on top.
func (w *Writer) Write(seq uint64, book *orderbook.OrderBook) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(w.Dir, "snapshot.bin")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, book.Len()),
	}

	collect := func(lvl *orderbook.PriceLevel) {
		for o := lvl.Head(); o != nil; o = o.Next() {
			s.Orders = append(s.Orders, OrderEntry{
				ID:           o.ID,
				SeqID:        o.SeqID,
				Side:         int(o.Side),
				Type:         int(o.Type),
				TIF:          int(o.TIF),
				Price:        o.Price,
				InitialQty:   o.InitialQty,
				RemainingQty: o.RemainingQty,
			})
		}
	}

	book.Bids(collect)
	book.Asks(collect)

	return gob.NewEncoder(f).Encode(&s)
}
