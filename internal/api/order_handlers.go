package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/ec-orders/internal/api/middleware"
	"github.com/example/ec-orders/internal/domain/order"
)

// OrderHandlers exposes the order service over HTTP.
type OrderHandlers struct {
	orders *order.Service
}

func NewOrderHandlers(orders *order.Service) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

func (h *OrderHandlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req order.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orders.Create(r.Context(), userID, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (h *OrderHandlers) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	orders, err := h.orders.GetUserOrders(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	userID := middleware.GetUserID(r.Context())

	view, err := h.orders.GetByID(r.Context(), orderID, userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *OrderHandlers) GetOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := order.ParseStatus(r.PathValue("status"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	orders, err := h.orders.GetByStatus(r.Context(), status)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	raw := r.URL.Query().Get("status")
	if raw == "" {
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			raw = body.Status
		}
	}

	status, err := order.ParseStatus(raw)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	view, err := h.orders.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// GetOrderByTrackingCode is a placeholder: lookup by tracking code has no
// service method yet, so the route always answers 404.
func (h *OrderHandlers) GetOrderByTrackingCode(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "not found")
}
