package product

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidPrice    = errors.New("price must be positive")
)

// Product is a catalog entry. ImageID references the externally stored
// product image; the catalog only carries the reference.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageID     string          `json:"image_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Store is the persistence contract for the catalog. Save assigns an id
// when the product has none and returns the persisted product.
type Store interface {
	Save(ctx context.Context, p *Product) (*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	Delete(ctx context.Context, id string) error
}

// Service handles catalog CRUD.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, name, description string, price decimal.Decimal, imageID string) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	now := s.now()
	p := &Product{
		Name:        name,
		Description: description,
		Price:       price,
		ImageID:     imageID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.store.Save(ctx, p)
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Product, error) {
	return s.store.FindAll(ctx)
}

func (s *Service) Update(ctx context.Context, id, name, description string, price decimal.Decimal, imageID string) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = name
	p.Description = description
	p.Price = price
	if imageID != "" {
		p.ImageID = imageID
	}
	p.UpdatedAt = s.now()

	return s.store.Save(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
