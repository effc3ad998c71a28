package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/example/ec-orders/internal/domain/order"
)

// uniqueViolation is the PostgreSQL error code for constraint 23505.
const uniqueViolation = "23505"

// PostgresOrderStore persists orders in PostgreSQL. Line items and the
// shipping address are stored as jsonb; the total as NUMERIC.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// Save upserts an order, assigning an id on first write. A violation of
// the tracking_code unique constraint surfaces as ErrDuplicateTrackingCode.
func (s *PostgresOrderStore) Save(ctx context.Context, o *order.Order) (*order.Order, error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, items, total, status, shipping_address, payment_method, tracking_code, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
			items = EXCLUDED.items,
			total = EXCLUDED.total,
			status = EXCLUDED.status,
			shipping_address = EXCLUDED.shipping_address,
			payment_method = EXCLUDED.payment_method,
			updated_at = EXCLUDED.updated_at`,
		o.ID, o.UserID, items, o.Total.String(), string(o.Status),
		address, o.PaymentMethod, o.TrackingCode, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", order.ErrDuplicateTrackingCode, o.TrackingCode)
		}
		return nil, err
	}

	return o, nil
}

func (s *PostgresOrderStore) FindByID(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, items, total, status, shipping_address, payment_method, tracking_code, created_at, updated_at
		 FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	return o, err
}

func (s *PostgresOrderStore) FindByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, items, total, status, shipping_address, payment_method, tracking_code, created_at, updated_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (s *PostgresOrderStore) FindByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, items, total, status, shipping_address, payment_method, tracking_code, created_at, updated_at
		 FROM orders WHERE status = $1 ORDER BY created_at DESC`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (s *PostgresOrderStore) ExistsByTrackingCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE tracking_code = $1)`, code).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o       order.Order
		items   []byte
		address []byte
		total   string
		status  string
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &total, &status,
		&address, &o.PaymentMethod, &o.TrackingCode, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	o.Status = order.Status(status)

	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]*order.Order, error) {
	orders := []*order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
