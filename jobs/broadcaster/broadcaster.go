// Package broadcaster drains the trade outbox (infra/wal/exit) and
// publishes each trade to Kafka, retrying on failure and marking
// records acked once sarama confirms the write — the background half
// of the trade sink's at-least-once delivery (spec §2.D/§6).
package broadcaster

import (
	"context"
	"log"
	"strconv"
	"time"

	"obsidian/domain/trade"
	exitwal "obsidian/infra/wal/exit"

	"github.com/IBM/sarama"
)

type Broadcaster struct {
	exitWAL  *exitwal.WAL
	producer sarama.SyncProducer
	topic    string
}

// New dials brokers and wires a broadcaster around the given outbox.
func New(exitWAL *exitwal.WAL, brokers []string, topic string) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return NewWithProducer(exitWAL, producer, topic), nil
}

// NewWithProducer wires a broadcaster around an already-constructed
// sarama.SyncProducer, skipping the broker dial New does. Exists for
// callers (notably tests) that need to inject a mocks.SyncProducer
// instead of talking to a real cluster.
func NewWithProducer(exitWAL *exitwal.WAL, producer sarama.SyncProducer, topic string) *Broadcaster {
	return &Broadcaster{
		exitWAL:  exitWAL,
		producer: producer,
		topic:    topic,
	}
}

// Start runs the drain loop in a background goroutine until ctx is
// cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")

	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drainOnce()
			}
		}
	}()
}

// drainOnce retries every StateFailed record, then publishes every
// StateNew record once. A send error marks the record Failed and
// leaves it in place for the next tick instead of propagating — the
// outbox, not this loop, is the durability boundary.
func (b *Broadcaster) drainOnce() {
	b.publishPending(exitwal.StateFailed)
	b.publishPending(exitwal.StateNew)
}

func (b *Broadcaster) publishPending(state exitwal.State) {
	_ = b.exitWAL.ScanByState(state, func(seq uint64, rec exitwal.Record) error {
		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(keyString(seq)),
			Value: sarama.ByteEncoder(rec.Payload),
		}

		if _, _, err := b.producer.SendMessage(msg); err != nil {
			log.Printf("[broadcaster] publish failed for trade %d: %v", seq, err)
			_ = b.exitWAL.UpdateState(seq, exitwal.StateFailed, rec.Retries+1)
			return nil
		}

		if err := b.exitWAL.UpdateState(seq, exitwal.StateAcked, rec.Retries); err != nil {
			return err
		}
		return b.exitWAL.Delete(seq)
	})
}

// EnqueueTrade records a freshly matched trade in the outbox. Called
// by the gateway's trade sink as the engine records each trade, before
// the engine call returns and before the broadcaster ever sees it.
func (b *Broadcaster) EnqueueTrade(seq uint64, t trade.Trade) error {
	return b.exitWAL.PutNew(seq, trade.Encode(t))
}

func keyString(seq uint64) string {
	return strconv.FormatUint(seq, 10)
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
