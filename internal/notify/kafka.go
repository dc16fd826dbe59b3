package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"storepay/internal/models"
)

// OutcomeEventType labels messages published for a payment outcome.
const OutcomeEventType = "payment.outcome"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes outcomes keyed by tx_ref so events for one reference keep
// their order within a partition.
type Kafka struct {
	writer messageWriter
	now    func() time.Time
}

// OutcomeEvent is the published message value.
type OutcomeEvent struct {
	Type       string                    `json:"type"`
	OccurredAt time.Time                 `json:"occurred_at"`
	Outcome    models.TransactionOutcome `json:"outcome"`
}

// NewKafka builds a writer for the given brokers and topic.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("kafka notifier needs brokers and a topic")
	}
	return newKafka(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}), nil
}

func newKafka(w messageWriter) *Kafka {
	return &Kafka{writer: w, now: time.Now}
}

func (k *Kafka) Notify(ctx context.Context, outcome models.TransactionOutcome) error {
	value, err := json.Marshal(OutcomeEvent{
		Type:       OutcomeEventType,
		OccurredAt: k.now().UTC(),
		Outcome:    outcome,
	})
	if err != nil {
		return fmt.Errorf("marshal outcome event: %w", err)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(outcome.TxRef),
		Value: value,
		Headers: []kafka.Header{
			{Key: "channel", Value: []byte(outcome.Channel)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish outcome event: %w", err)
	}
	return nil
}

// Close flushes pending messages.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
