package broadcaster

import (
	"testing"

	"obsidian/domain/orderbook"
	"obsidian/domain/trade"
	exitwal "obsidian/infra/wal/exit"

	"github.com/IBM/sarama/mocks"
)

func openExitWAL(t *testing.T) *exitwal.WAL {
	t.Helper()
	w, err := exitwal.Open(t.TempDir())
	if err != nil {
		t.Fatalf("exit wal Open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func sampleTrade() trade.Trade {
	return trade.Trade{
		BuyOrderID:  1,
		SellOrderID: 2,
		Price:       100,
		Quantity:    5,
		BuyOrderType: trade.OrderSnapshot{
			Type: orderbook.Limit,
			TIF:  orderbook.GoodTillCancel,
		},
		SellOrderType: trade.OrderSnapshot{
			Type: orderbook.Limit,
			TIF:  orderbook.GoodTillCancel,
		},
		SeqID: 99,
	}
}

func TestDrainOnceAcksAndDeletesOnSuccess(t *testing.T) {
	exitWAL := openExitWAL(t)
	if err := exitWAL.PutNew(1, trade.Encode(sampleTrade())); err != nil {
		t.Fatalf("PutNew: %v", err)
	}

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()

	b := NewWithProducer(exitWAL, producer, "trades")
	b.drainOnce()

	if _, err := exitWAL.Get(1); err == nil {
		t.Fatalf("record 1 still present after a successful publish, want it deleted")
	}
}

func TestDrainOnceMarksFailedOnSendError(t *testing.T) {
	exitWAL := openExitWAL(t)
	if err := exitWAL.PutNew(1, trade.Encode(sampleTrade())); err != nil {
		t.Fatalf("PutNew: %v", err)
	}

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errSendFailed)

	b := NewWithProducer(exitWAL, producer, "trades")
	b.drainOnce()

	rec, err := exitWAL.Get(1)
	if err != nil {
		t.Fatalf("Get(1) after failed publish: %v", err)
	}
	if rec.State != exitwal.StateFailed || rec.Retries != 1 {
		t.Fatalf("record 1 = %+v, want State=Failed Retries=1", rec)
	}
}

func TestDrainOnceRetriesPreviouslyFailedRecords(t *testing.T) {
	exitWAL := openExitWAL(t)
	if err := exitWAL.PutNew(1, trade.Encode(sampleTrade())); err != nil {
		t.Fatalf("PutNew: %v", err)
	}
	if err := exitWAL.UpdateState(1, exitwal.StateFailed, 2); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()

	b := NewWithProducer(exitWAL, producer, "trades")
	b.drainOnce()

	if _, err := exitWAL.Get(1); err == nil {
		t.Fatalf("record 1 still present after a successful retry, want it deleted")
	}
}

func TestEnqueueTradeStoresEncodedPayload(t *testing.T) {
	exitWAL := openExitWAL(t)
	b := NewWithProducer(exitWAL, mocks.NewSyncProducer(t, nil), "trades")

	tr := sampleTrade()
	if err := b.EnqueueTrade(7, tr); err != nil {
		t.Fatalf("EnqueueTrade: %v", err)
	}

	rec, err := exitWAL.Get(7)
	if err != nil {
		t.Fatalf("Get(7): %v", err)
	}
	got, err := trade.Decode(rec.Payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != tr {
		t.Fatalf("decoded payload = %+v, want %+v", got, tr)
	}
}

var errSendFailed = sendError{}

type sendError struct{}

func (sendError) Error() string { return "broadcaster test: simulated send failure" }
