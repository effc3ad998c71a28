package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/ec-orders/internal/domain/product"
)

// PostgresProductStore persists catalog products in PostgreSQL.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Save(ctx context.Context, p *product.Product) (*product.Product, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, image_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image_id = EXCLUDED.image_id,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Description, p.Price.String(), p.ImageID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *PostgresProductStore) FindByID(ctx context.Context, id string) (*product.Product, error) {
	var (
		p     product.Product
		price string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, image_id, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &price, &p.ImageID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", product.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresProductStore) FindAll(ctx context.Context) ([]*product.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, price, image_id, created_at, updated_at
		 FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*product.Product{}
	for rows.Next() {
		var (
			p     product.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.ImageID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (s *PostgresProductStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", product.ErrProductNotFound, id)
	}
	return nil
}
