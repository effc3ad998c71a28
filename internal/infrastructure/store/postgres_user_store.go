package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/example/ec-orders/internal/domain/user"
)

// PostgresUserStore persists user accounts in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Save(ctx context.Context, u *user.User) (*user.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, email, password_hash, phone, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			phone = EXCLUDED.phone,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Phone, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, user.ErrUserAlreadyExists
		}
		return nil, err
	}

	return u, nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	return s.findBy(ctx, "id", id)
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findBy(ctx, "email", email)
}

func (s *PostgresUserStore) findBy(ctx context.Context, column, value string) (*user.User, error) {
	var u user.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, password_hash, phone, role, created_at, updated_at
		 FROM users WHERE `+column+` = $1`, value,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
