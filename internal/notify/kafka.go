package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AlertEvent is the payload published for downstream delivery services.
type AlertEvent struct {
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes alerts to a topic keyed by recipient, so one owner's
// alerts stay ordered within a partition.
type Kafka struct {
	w     messageWriter
	topic string
	log   *zap.Logger
	now   func() time.Time
}

func NewKafka(brokers []string, topic string, log *zap.Logger) *Kafka {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &Kafka{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
		},
		topic: topic,
		log:   log.With(zap.String("component", "notify.kafka"), zap.String("topic", topic)),
		now:   time.Now,
	}
}

func (k *Kafka) message(recipient, text string) (kafka.Message, error) {
	value, err := json.Marshal(AlertEvent{Recipient: recipient, Message: text, At: k.now().UTC()})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(recipient), Value: value}, nil
}

func (k *Kafka) Send(ctx context.Context, recipient, message string) error {
	if k == nil {
		return fmt.Errorf("kafka: %w", ErrDisabled)
	}
	msg, err := k.message(recipient, message)
	if err != nil {
		return fmt.Errorf("kafka encode: %w", err)
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	k.log.Debug("alert_published", zap.String("recipient", recipient))
	return nil
}

func (k *Kafka) Close() error {
	if k == nil {
		return nil
	}
	return k.w.Close()
}
