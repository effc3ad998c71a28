package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-orders/internal/auth"
	"github.com/example/ec-orders/internal/domain/order"
	"github.com/example/ec-orders/internal/domain/product"
	"github.com/example/ec-orders/internal/domain/user"
	"github.com/example/ec-orders/internal/tracking"
)

// In-memory stores backing the full router under test.

type fakeOrderStore struct {
	orders map[string]*order.Order
	nextID int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*order.Order{}}
}

func (f *fakeOrderStore) Save(ctx context.Context, o *order.Order) (*order.Order, error) {
	if o.ID == "" {
		f.nextID++
		o.ID = fmt.Sprintf("order-%d", f.nextID)
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrderStore) FindByID(ctx context.Context, id string) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderStore) FindByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) FindByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range f.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ExistsByTrackingCode(ctx context.Context, code string) (bool, error) {
	for _, o := range f.orders {
		if o.TrackingCode == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeCatalog struct {
	products map[string]*product.Product
}

func (f *fakeCatalog) FindByID(ctx context.Context, id string) (*product.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", product.ErrProductNotFound, id)
	}
	return p, nil
}

type fakeUserStore struct {
	users map[string]*user.User
}

func (f *fakeUserStore) Save(ctx context.Context, u *user.User) (*user.User, error) {
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

type testEnv struct {
	router     http.Handler
	orderStore *fakeOrderStore
	jwtService *auth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	orderStore := newFakeOrderStore()
	catalog := &fakeCatalog{products: map[string]*product.Product{
		"P1": {ID: "P1", Name: "Teclado", Price: decimal.RequireFromString("15000")},
	}}
	userStore := &fakeUserStore{users: map[string]*user.User{}}

	n := 0
	gen := tracking.NewGeneratorWith(time.Now, func(int) int {
		n++
		return n % 10
	})

	jwtService := auth.NewJWTService("test-secret-key-that-is-long-enough!", 15*time.Minute, 24*time.Hour)
	orderSvc := order.NewService(orderStore, catalog, gen, nil)

	router := NewRouter(RouterConfig{
		Orders:     NewOrderHandlers(orderSvc),
		Products:   NewProductHandlers(product.NewService(&fakeProductStore{catalog: catalog})),
		Auth:       NewAuthHandlers(user.NewService(userStore), jwtService),
		JWTService: jwtService,
	})

	return &testEnv{router: router, orderStore: orderStore, jwtService: jwtService}
}

// fakeProductStore adapts the catalog map to the product.Store interface.
type fakeProductStore struct {
	catalog *fakeCatalog
	nextID  int
}

func (f *fakeProductStore) Save(ctx context.Context, p *product.Product) (*product.Product, error) {
	if p.ID == "" {
		f.nextID++
		p.ID = fmt.Sprintf("product-%d", f.nextID)
	}
	f.catalog.products[p.ID] = p
	return p, nil
}

func (f *fakeProductStore) FindByID(ctx context.Context, id string) (*product.Product, error) {
	return f.catalog.FindByID(ctx, id)
}

func (f *fakeProductStore) FindAll(ctx context.Context) ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(f.catalog.products))
	for _, p := range f.catalog.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.catalog.products[id]; !ok {
		return fmt.Errorf("%w: %s", product.ErrProductNotFound, id)
	}
	delete(f.catalog.products, id)
	return nil
}

func (e *testEnv) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, _, err := e.jwtService.GenerateAccessToken(userID, userID+"@example.com", role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

const createBody = `{
	"items": [{"product_id": "P1", "quantity": 2}],
	"shipping_address": {
		"street": "Calle 10 #5-31", "city": "Medellín", "state": "Antioquia",
		"country": "CO", "zip_code": "050021", "phone": "3001234567",
		"recipient_name": "Ana Pérez"
	},
	"payment_method": "credit_card"
}`

func TestOrderHandlers_CreateOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-123", "customer")

	w := env.do(t, http.MethodPost, "/orders", token, createBody)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp order.CreateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Pedido creado exitosamente", resp.Message)
	assert.Equal(t, "pendiente", resp.Status)
	assert.Regexp(t, `^ORD-\d{8}-\d{4}$`, resp.TrackingCode)

	saved := env.orderStore.orders[resp.OrderID]
	require.NotNil(t, saved)
	assert.Equal(t, "user-123", saved.UserID)
	assert.True(t, saved.Total.Equal(decimal.RequireFromString("30000")))
}

func TestOrderHandlers_CreateOrder_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/orders", "", createBody)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandlers_CreateOrder_EmptyItems(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-123", "customer")

	w := env.do(t, http.MethodPost, "/orders", token, `{"items": [], "payment_method": "card"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), order.ErrEmptyOrder.Error())
}

func TestOrderHandlers_CreateOrder_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-123", "customer")
	body := strings.Replace(createBody, `"P1"`, `"ghost"`, 1)

	w := env.do(t, http.MethodPost, "/orders", token, body)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, env.orderStore.orders)
}

func TestOrderHandlers_GetOrder(t *testing.T) {
	env := newTestEnv(t)
	owner := env.token(t, "user-123", "customer")

	created := env.do(t, http.MethodPost, "/orders", owner, createBody)
	require.Equal(t, http.StatusCreated, created.Code)
	var resp order.CreateResult
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &resp))

	t.Run("owner sees the order", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/orders/"+resp.OrderID, owner, "")
		require.Equal(t, http.StatusOK, w.Code)

		var view order.View
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, "pendiente", view.Status)
		assert.Equal(t, resp.TrackingCode, view.TrackingCode)
	})

	t.Run("other user gets 403", func(t *testing.T) {
		intruder := env.token(t, "user-999", "customer")
		w := env.do(t, http.MethodGet, "/orders/"+resp.OrderID, intruder, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown id gets 404", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/orders/nope", owner, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandlers_GetOrdersByStatus(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", "admin")
	customer := env.token(t, "user-123", "customer")

	created := env.do(t, http.MethodPost, "/orders", customer, createBody)
	require.Equal(t, http.StatusCreated, created.Code)

	t.Run("admin lists by status, case-insensitive", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/orders/status/pending", admin, "")
		require.Equal(t, http.StatusOK, w.Code)

		var views []*order.View
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
		assert.Len(t, views, 1)
	})

	t.Run("unknown status gets 400", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/orders/status/lost", admin, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("customer gets 403", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/orders/status/pending", customer, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestOrderHandlers_UpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", "admin")
	customer := env.token(t, "user-123", "customer")

	created := env.do(t, http.MethodPost, "/orders", customer, createBody)
	require.Equal(t, http.StatusCreated, created.Code)
	var resp order.CreateResult
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &resp))

	t.Run("status from query parameter", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/orders/"+resp.OrderID+"/status?status=shipped", admin, "")
		require.Equal(t, http.StatusOK, w.Code)

		var view order.View
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, "enviado", view.Status)
	})

	t.Run("status from body", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/orders/"+resp.OrderID+"/status", admin, `{"status": "DELIVERED"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var view order.View
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, "entregado", view.Status)
	})

	t.Run("invalid status gets 400", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/orders/"+resp.OrderID+"/status?status=lost", admin, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("customer gets 403", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/orders/"+resp.OrderID+"/status?status=shipped", customer, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestOrderHandlers_GetUserOrders(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-123", "customer")

	w := env.do(t, http.MethodGet, "/orders", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	created := env.do(t, http.MethodPost, "/orders", token, createBody)
	require.Equal(t, http.StatusCreated, created.Code)

	w = env.do(t, http.MethodGet, "/orders", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var views []*order.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	assert.Len(t, views, 1)
}

func TestOrderHandlers_GetOrderByTrackingCode_NotImplemented(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/orders/tracking/ORD-20250314-1234", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
