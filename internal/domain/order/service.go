package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/ec-orders/internal/domain/product"
	"github.com/example/ec-orders/internal/tracking"
)

// maxTrackingAttempts bounds the uniqueness retry loop during creation.
const maxTrackingAttempts = 10

// Store is the persistence contract for orders. Save upserts and assigns
// an id when the order has none. FindByUser and FindByStatus return orders
// newest first. Implementations must enforce tracking-code uniqueness at
// write time and surface violations as ErrDuplicateTrackingCode.
type Store interface {
	Save(ctx context.Context, o *Order) (*Order, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByUser(ctx context.Context, userID string) ([]*Order, error)
	FindByStatus(ctx context.Context, status Status) ([]*Order, error)
	ExistsByTrackingCode(ctx context.Context, code string) (bool, error)
}

// Catalog looks up products for line-item pricing.
type Catalog interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
}

// Publisher emits order lifecycle events. Publishing is best effort; a
// failed publish never fails the operation that triggered it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service orchestrates order creation, reads and status updates.
type Service struct {
	store    Store
	catalog  Catalog
	tracking *tracking.Generator
	events   Publisher
	now      func() time.Time
}

func NewService(store Store, catalog Catalog, gen *tracking.Generator, events Publisher) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		tracking: gen,
		events:   events,
		now:      time.Now,
	}
}

// CreateResult acknowledges a successful creation.
type CreateResult struct {
	Message      string    `json:"message"`
	OrderID      string    `json:"order_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	TrackingCode string    `json:"tracking_code"`
}

// Create validates the request, prices it against the catalog, assigns a
// unique tracking code and persists the order. Any failure aborts before
// the store write; a failed create leaves no record behind.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*CreateResult, error) {
	log.Printf("[Order] Creating order for user %s", userID)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	items, total, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		UserID:          userID,
		Items:           items,
		Total:           total,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		ShippingAddress: *req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}

	code, err := s.uniqueTrackingCode(ctx)
	if err != nil {
		return nil, err
	}
	o.TrackingCode = code

	saved, err := s.store.Save(ctx, o)
	if err != nil {
		// The store's uniqueness constraint caught a collision that slipped
		// past the pre-check. Report it the same way as an exhausted loop.
		if errors.Is(err, ErrDuplicateTrackingCode) {
			return nil, ErrTrackingCodeExhausted
		}
		return nil, err
	}

	log.Printf("[Order] Order %s created with tracking code %s", saved.ID, saved.TrackingCode)
	s.publish(ctx, saved.ID, EventOrderCreated, NewOrderCreated(saved))

	return &CreateResult{
		Message:      "Pedido creado exitosamente",
		OrderID:      saved.ID,
		Status:       saved.Status.Label(),
		CreatedAt:    saved.CreatedAt,
		TrackingCode: saved.TrackingCode,
	}, nil
}

// priceItems resolves each requested item against the catalog and snapshots
// name, image and unit price. Subtotals and the total use exact decimal
// arithmetic; the total accumulates in request order.
func (s *Service) priceItems(ctx context.Context, reqs []ItemRequest) ([]Item, decimal.Decimal, error) {
	items := make([]Item, 0, len(reqs))
	total := decimal.Zero

	for _, r := range reqs {
		p, err := s.catalog.FindByID(ctx, r.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrProductNotFound, r.ProductID)
			}
			return nil, decimal.Zero, err
		}

		if r.Quantity <= 0 {
			return nil, decimal.Zero, ErrEmptyOrder
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(int64(r.Quantity)))
		items = append(items, Item{
			ProductID:      p.ID,
			ProductName:    p.Name,
			ProductImageID: p.ImageID,
			Quantity:       r.Quantity,
			UnitPrice:      p.Price,
			Subtotal:       subtotal,
		})
		total = total.Add(subtotal)
	}

	return items, total, nil
}

// uniqueTrackingCode generates candidates until one is unused, up to
// maxTrackingAttempts generations.
func (s *Service) uniqueTrackingCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		code := s.tracking.Generate()
		exists, err := s.store.ExistsByTrackingCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrTrackingCodeExhausted
}

// GetByID fetches one order on behalf of a user. Orders owned by another
// user come back as ErrForbidden, never as not-found.
func (s *Service) GetByID(ctx context.Context, orderID, userID string) (*View, error) {
	o, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}
	return NewView(o), nil
}

// GetUserOrders lists a user's orders, newest first.
func (s *Service) GetUserOrders(ctx context.Context, userID string) ([]*View, error) {
	orders, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewViews(orders), nil
}

// GetByStatus lists all orders in a given status, newest first.
func (s *Service) GetByStatus(ctx context.Context, status Status) ([]*View, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	orders, err := s.store.FindByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return NewViews(orders), nil
}

// UpdateStatus overwrites an order's status and refreshes its updated
// timestamp. Transitions are not validated against the lifecycle graph;
// any known status may replace any other.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) (*View, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	o, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	o.Status = status
	o.UpdatedAt = s.now()

	saved, err := s.store.Save(ctx, o)
	if err != nil {
		return nil, err
	}

	log.Printf("[Order] Order %s status %s -> %s", saved.ID, previous, status)
	s.publish(ctx, saved.ID, EventOrderStatusChanged, NewOrderStatusChanged(saved, previous))

	return NewView(saved), nil
}

func (s *Service) publish(ctx context.Context, orderID, eventType string, payload any) {
	if s.events == nil {
		return
	}
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		log.Printf("[Order] Failed to encode %s for order %s: %v", eventType, orderID, err)
		return
	}
	if err := s.events.Publish(ctx, orderID, env); err != nil {
		log.Printf("[Order] Failed to publish %s for order %s: %v", eventType, orderID, err)
	}
}
