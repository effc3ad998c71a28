package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Envelope wraps an event payload with its type for transport over Kafka.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEnvelope marshals a payload into an envelope.
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Data: data}, nil
}

// OrderCreated is emitted after an order is persisted.
type OrderCreated struct {
	OrderID      string          `json:"order_id"`
	UserID       string          `json:"user_id"`
	Items        []Item          `json:"items"`
	Total        decimal.Decimal `json:"total"`
	TrackingCode string          `json:"tracking_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewOrderCreated(o *Order) OrderCreated {
	return OrderCreated{
		OrderID:      o.ID,
		UserID:       o.UserID,
		Items:        o.Items,
		Total:        o.Total,
		TrackingCode: o.TrackingCode,
		CreatedAt:    o.CreatedAt,
	}
}

// OrderStatusChanged is emitted after a status update is persisted.
type OrderStatusChanged struct {
	OrderID      string    `json:"order_id"`
	UserID       string    `json:"user_id"`
	TrackingCode string    `json:"tracking_code"`
	Previous     Status    `json:"previous"`
	Status       Status    `json:"status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewOrderStatusChanged(o *Order, previous Status) OrderStatusChanged {
	return OrderStatusChanged{
		OrderID:      o.ID,
		UserID:       o.UserID,
		TrackingCode: o.TrackingCode,
		Previous:     previous,
		Status:       o.Status,
		UpdatedAt:    o.UpdatedAt,
	}
}
