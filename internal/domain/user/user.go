package user

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/example/ec-orders/internal/auth"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store is the persistence contract for users. Save assigns an id when the
// user has none. FindByEmail returns ErrUserNotFound for unknown emails.
type Store interface {
	Save(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// Service handles registration and credential checks.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Register creates a customer account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, password, phone string) (*User, error) {
	return s.RegisterWithRole(ctx, firstName, lastName, email, password, phone, RoleCustomer)
}

func (s *Service) RegisterWithRole(ctx context.Context, firstName, lastName, email, password, phone, role string) (*User, error) {
	if firstName == "" {
		return nil, ErrInvalidName
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.store.Save(ctx, u)
}

// Authenticate verifies an email/password pair. Unknown emails and wrong
// passwords both come back as ErrInvalidCredentials so the response does
// not reveal which part failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.FindByID(ctx, id)
}
