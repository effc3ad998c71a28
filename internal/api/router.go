package api

import (
	"log"
	"net/http"

	"github.com/example/ec-orders/internal/api/middleware"
	"github.com/example/ec-orders/internal/auth"
	"github.com/example/ec-orders/internal/domain/user"
)

// RouterConfig bundles the handler groups and the JWT service the
// protected routes depend on.
type RouterConfig struct {
	Orders     *OrderHandlers
	Products   *ProductHandlers
	Auth       *AuthHandlers
	JWTService *auth.JWTService
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.Auth(cfg.JWTService)
	requireAdmin := func(h http.Handler) http.Handler {
		return requireAuth(middleware.RequireRole(user.RoleAdmin)(h))
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /auth/register", cfg.Auth.Register)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)
	mux.HandleFunc("POST /auth/refresh", cfg.Auth.Refresh)

	// Products: reads are public, mutations are admin-only
	mux.HandleFunc("GET /products", cfg.Products.GetProducts)
	mux.HandleFunc("GET /products/{id}", cfg.Products.GetProduct)
	mux.Handle("POST /products", requireAdmin(http.HandlerFunc(cfg.Products.CreateProduct)))
	mux.Handle("PUT /products/{id}", requireAdmin(http.HandlerFunc(cfg.Products.UpdateProduct)))
	mux.Handle("DELETE /products/{id}", requireAdmin(http.HandlerFunc(cfg.Products.DeleteProduct)))

	// Orders
	mux.Handle("POST /orders", requireAuth(http.HandlerFunc(cfg.Orders.CreateOrder)))
	mux.Handle("GET /orders", requireAuth(http.HandlerFunc(cfg.Orders.GetUserOrders)))
	mux.Handle("GET /orders/{id}", requireAuth(http.HandlerFunc(cfg.Orders.GetOrder)))
	mux.Handle("GET /orders/status/{status}", requireAdmin(http.HandlerFunc(cfg.Orders.GetOrdersByStatus)))
	mux.Handle("PUT /orders/{id}/status", requireAdmin(http.HandlerFunc(cfg.Orders.UpdateOrderStatus)))
	mux.HandleFunc("GET /orders/tracking/{code}", cfg.Orders.GetOrderByTrackingCode)

	return withLogging(mux)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
