package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nvujicic/supplyline/internal/orders/domain"
	"github.com/segmentio/kafka-go"
)

// EventBus publishes order lifecycle events to Kafka. Messages are keyed
// by order ID so every event of one order lands on the same partition and
// keeps its ordering.
type EventBus struct {
	writer   *kafka.Writer
	producer string
}

// NewEventBus creates an EventBus writing to the given brokers.
func NewEventBus(brokers []string, producer string) *EventBus {
	return &EventBus{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
		producer: producer,
	}
}

func (b *EventBus) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	payload := OrderPlacedPayload{
		OrderID:   order.ID,
		BuyerID:   order.UserID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		Status:    string(order.Status),
	}
	return b.publish(ctx, TopicOrderPlaced, EventOrderPlaced, order.ID, payload)
}

func (b *EventBus) PublishStatusChanged(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	payload := StatusChangedPayload{OrderID: orderID, Status: string(status)}
	return b.publish(ctx, TopicStatusChanged, EventStatusChanged, orderID, payload)
}

func (b *EventBus) PublishOrderDeleted(ctx context.Context, orderID int64) error {
	return b.publish(ctx, TopicOrderDeleted, EventOrderDeleted, orderID, OrderDeletedPayload{OrderID: orderID})
}

func (b *EventBus) publish(ctx context.Context, topic, eventType string, orderID int64, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	envelope := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     b.producer,
		Payload:      raw,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write %s message: %w", eventType, err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (b *EventBus) Close() error {
	return b.writer.Close()
}
