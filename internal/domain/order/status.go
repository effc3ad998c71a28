package order

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Label returns the customer-facing Spanish label for a status. The switch
// is total over the enum so adding a status without a label fails loudly.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "pendiente"
	case StatusProcessing:
		return "en proceso"
	case StatusShipped:
		return "enviado"
	case StatusDelivered:
		return "entregado"
	case StatusCancelled:
		return "cancelado"
	default:
		panic(fmt.Sprintf("order: unknown status %q", string(s)))
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts an inbound token (case-insensitive) to a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, raw)
	}
	return s, nil
}
