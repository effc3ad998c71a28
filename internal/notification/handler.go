package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/ec-orders/internal/domain/order"
	"github.com/example/ec-orders/internal/domain/user"
	"github.com/example/ec-orders/internal/email"
)

// Handler turns order events from Kafka into customer emails.
type Handler struct {
	emailService *email.Service
	users        user.Store
}

func NewHandler(emailSvc *email.Service, users user.Store) *Handler {
	return &Handler{
		emailService: emailSvc,
		users:        users,
	}
}

// HandleEvent processes one event from Kafka. Unknown event types are
// skipped. Lookup failures are logged and swallowed so one bad event does
// not wedge the consumer group.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env order.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch env.Type {
	case order.EventOrderCreated:
		return h.handleOrderCreated(ctx, env.Data)
	case order.EventOrderStatusChanged:
		return h.handleStatusChanged(ctx, env.Data)
	default:
		return nil
	}
}

func (h *Handler) handleOrderCreated(ctx context.Context, data json.RawMessage) error {
	var e order.OrderCreated
	if err := json.Unmarshal(data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal order.created: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing order.created for order %s, user %s", e.OrderID, e.UserID)

	u, err := h.users.FindByID(ctx, e.UserID)
	if err != nil {
		log.Printf("[Notifier] Cannot resolve user %s: %v", e.UserID, err)
		return nil
	}

	emailItems := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		emailItems[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		}
	}

	if err := h.emailService.SendOrderConfirmation(u.Email, e.TrackingCode, e.Total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", u.Email, err)
		return err
	}

	log.Printf("[Notifier] Confirmation sent to %s for order %s", u.Email, e.OrderID)
	return nil
}

func (h *Handler) handleStatusChanged(ctx context.Context, data json.RawMessage) error {
	var e order.OrderStatusChanged
	if err := json.Unmarshal(data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal order.status_changed: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing order.status_changed for order %s (%s -> %s)", e.OrderID, e.Previous, e.Status)

	if !e.Status.Valid() {
		log.Printf("[Notifier] Skipping event with unknown status %q", e.Status)
		return nil
	}

	u, err := h.users.FindByID(ctx, e.UserID)
	if err != nil {
		log.Printf("[Notifier] Cannot resolve user %s: %v", e.UserID, err)
		return nil
	}

	if err := h.emailService.SendStatusUpdate(u.Email, e.TrackingCode, e.Status.Label()); err != nil {
		log.Printf("[Notifier] Failed to send status update to %s: %v", u.Email, err)
		return err
	}

	return nil
}
