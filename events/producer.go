package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	OrderCreated   = "order.created"
	OrderPaid      = "order.paid"
	OrderDelivered = "order.delivered"
	OrderDeleted   = "order.deleted"
)

type OrderEvent struct {
	Type       string          `json:"type"`
	OrderID    uint            `json:"order_id"`
	UserID     uint            `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Publisher sends order lifecycle events. Callers treat failures as best effort.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           100 * time.Millisecond,
		},
	}
}

// Publish keys messages by order id so one order's events stay ordered.
func (p *Producer) Publish(ctx context.Context, event OrderEvent) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order event: %w", err)
	}
	return nil
}

func newMessage(event OrderEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal order event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.OrderID)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Discard drops every event. Used when no brokers are configured.
type Discard struct{}

func (Discard) Publish(context.Context, OrderEvent) error { return nil }
