package kafka

import (
	"encoding/json"
	"time"
)

const (
	TopicOrderPlaced   = "order.placed"
	TopicStatusChanged = "order.status_changed"
	TopicOrderDeleted  = "order.deleted"
)

const (
	EventOrderPlaced   = "OrderPlaced"
	EventStatusChanged = "OrderStatusChanged"
	EventOrderDeleted  = "OrderDeleted"
)

// Envelope is the wire format shared by every order event.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID   int64  `json:"order_id"`
	BuyerID   int64  `json:"buyer_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	Status    string `json:"status"`
}

type StatusChangedPayload struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type OrderDeletedPayload struct {
	OrderID int64 `json:"order_id"`
}
