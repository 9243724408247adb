package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher ships checkout events to a Kafka topic. Each publish opens its
// own writer and closes it afterward; emission is off the settlement critical
// path, so the per-call connection cost is acceptable and keeps the adapter
// free of pooled state.
type Publisher struct {
	brokers []string
	topic   string
}

// NewPublisher parses a comma-separated broker list. An empty list yields a
// disabled publisher.
func NewPublisher(brokersCSV, topic string) *Publisher {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if topic == "" {
		topic = ports.TopicOrderEvents
	}
	return &Publisher{brokers: brokers, topic: topic}
}

// Enabled reports whether any broker is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && len(p.brokers) > 0
}

// Publish marshals the payload and writes one keyed message. Delivery is
// at-least-once; ordering is not promised.
func (p *Publisher) Publish(ctx context.Context, key string, payload any) error {
	if !p.Enabled() {
		return errors.New("kafka publisher not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        p.topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()
	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
}
