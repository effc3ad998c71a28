package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-orders/internal/domain/order"
	"github.com/example/ec-orders/internal/domain/user"
	"github.com/example/ec-orders/internal/email"
)

type mockUserStore struct {
	users map[string]*user.User

	FindCalls []string
}

func (m *mockUserStore) Save(ctx context.Context, u *user.User) (*user.User, error) {
	return u, nil
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	m.FindCalls = append(m.FindCalls, id)
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func envelope(t *testing.T, eventType string, payload any) []byte {
	t.Helper()
	env, err := order.NewEnvelope(eventType, payload)
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func TestHandler_HandleEvent_MalformedJSON(t *testing.T) {
	h := NewHandler(email.NewService("localhost", "1025", "no-reply@example.com"), &mockUserStore{})

	err := h.HandleEvent(context.Background(), []byte("key"), []byte("{not json"))

	assert.Error(t, err)
}

func TestHandler_HandleEvent_UnknownTypeIsSkipped(t *testing.T) {
	users := &mockUserStore{}
	h := NewHandler(email.NewService("localhost", "1025", "no-reply@example.com"), users)

	err := h.HandleEvent(context.Background(), []byte("key"), envelope(t, "order.archived", map[string]string{"order_id": "o1"}))

	assert.NoError(t, err)
	assert.Empty(t, users.FindCalls)
}

func TestHandler_HandleEvent_OrderCreated_UnknownUserIsSwallowed(t *testing.T) {
	// A missing user must not error: a poison event would otherwise stall
	// the consumer group.
	users := &mockUserStore{users: map[string]*user.User{}}
	h := NewHandler(email.NewService("localhost", "1025", "no-reply@example.com"), users)

	payload := order.OrderCreated{
		OrderID:      "o1",
		UserID:       "ghost",
		TrackingCode: "ORD-20250314-1234",
		CreatedAt:    time.Now(),
	}
	err := h.HandleEvent(context.Background(), []byte("o1"), envelope(t, order.EventOrderCreated, payload))

	assert.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, users.FindCalls)
}

func TestHandler_HandleEvent_StatusChanged_UnknownStatusIsSkipped(t *testing.T) {
	users := &mockUserStore{users: map[string]*user.User{}}
	h := NewHandler(email.NewService("localhost", "1025", "no-reply@example.com"), users)

	payload := order.OrderStatusChanged{
		OrderID:      "o1",
		UserID:       "user-123",
		TrackingCode: "ORD-20250314-1234",
		Previous:     order.StatusPending,
		Status:       order.Status("LOST"),
	}
	err := h.HandleEvent(context.Background(), []byte("o1"), envelope(t, order.EventOrderStatusChanged, payload))

	assert.NoError(t, err)
	assert.Empty(t, users.FindCalls, "unknown status must be dropped before any lookup")
}

func TestHandler_HandleEvent_StatusChanged_UnknownUserIsSwallowed(t *testing.T) {
	users := &mockUserStore{users: map[string]*user.User{}}
	h := NewHandler(email.NewService("localhost", "1025", "no-reply@example.com"), users)

	payload := order.OrderStatusChanged{
		OrderID:      "o1",
		UserID:       "ghost",
		TrackingCode: "ORD-20250314-1234",
		Previous:     order.StatusPending,
		Status:       order.StatusShipped,
	}
	err := h.HandleEvent(context.Background(), []byte("o1"), envelope(t, order.EventOrderStatusChanged, payload))

	assert.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, users.FindCalls)
}
