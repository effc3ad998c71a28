package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// View is the caller-facing shape of an order. Status travels as the
// Spanish label, not the internal token.
type View struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []ItemView      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	TrackingCode    string          `json:"tracking_code"`
}

type ItemView struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductImageID string          `json:"product_image_id,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

func NewView(o *Order) *View {
	items := make([]ItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemView{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			ProductImageID: it.ProductImageID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			Subtotal:       it.Subtotal,
		}
	}
	return &View{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Total:           o.Total,
		Status:          o.Status.Label(),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		TrackingCode:    o.TrackingCode,
	}
}

func NewViews(orders []*Order) []*View {
	views := make([]*View, len(orders))
	for i, o := range orders {
		views[i] = NewView(o)
	}
	return views
}
