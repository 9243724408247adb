package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

func TestNewPublisherParsesBrokerList(t *testing.T) {
	p := NewPublisher("broker-1:9092, broker-2:9092 ,", "orders")
	assert.True(t, p.Enabled())
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, p.brokers)
	assert.Equal(t, "orders", p.topic)
}

func TestNewPublisherDefaultsTopic(t *testing.T) {
	p := NewPublisher("broker-1:9092", "")
	assert.Equal(t, ports.TopicOrderEvents, p.topic)
}

func TestPublisherDisabledWithoutBrokers(t *testing.T) {
	p := NewPublisher("", "orders")
	assert.False(t, p.Enabled())

	err := p.Publish(context.Background(), "key", map[string]string{"k": "v"})
	assert.Error(t, err)
}
