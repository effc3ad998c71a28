package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrder            = errors.New("order must have at least one item")
	ErrMissingAddress        = errors.New("shipping address is required")
	ErrMissingPaymentMethod  = errors.New("payment method is required")
	ErrProductNotFound       = errors.New("product not found")
	ErrTrackingCodeExhausted = errors.New("could not generate a unique tracking code")
	ErrOrderNotFound         = errors.New("order not found")
	ErrForbidden             = errors.New("order belongs to another user")
	ErrInvalidStatus         = errors.New("invalid order status")

	// ErrDuplicateTrackingCode is returned by stores when a save violates
	// the tracking-code uniqueness constraint. It backstops the
	// check-then-act race in the creation retry loop.
	ErrDuplicateTrackingCode = errors.New("tracking code already exists")
)

// Order is the persisted order state. Item prices and names are snapshots
// taken from the catalog at creation time; later catalog changes do not
// touch existing orders. TrackingCode is assigned once and never changes.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []Item          `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	TrackingCode    string          `json:"tracking_code"`
}

// Item is one priced line of an order.
type Item struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductImageID string          `json:"product_image_id,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// ShippingAddress is an opaque value object; all fields are required.
type ShippingAddress struct {
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	ZipCode       string `json:"zip_code"`
	Phone         string `json:"phone"`
	RecipientName string `json:"recipient_name"`
}

// CreateRequest is the inbound payload for order creation.
type CreateRequest struct {
	Items           []ItemRequest    `json:"items"`
	ShippingAddress *ShippingAddress `json:"shipping_address"`
	PaymentMethod   string           `json:"payment_method"`
}

// ItemRequest references a catalog product by id.
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Validate enforces the structural preconditions of a creation request.
// Checks run in a fixed order so the reported error is deterministic:
// items, then address, then payment method. Item quantities are checked
// later during pricing.
func (r CreateRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyOrder
	}
	if r.ShippingAddress == nil {
		return ErrMissingAddress
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return ErrMissingPaymentMethod
	}
	return nil
}
