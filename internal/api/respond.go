package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/example/ec-orders/internal/auth"
	"github.com/example/ec-orders/internal/domain/order"
	"github.com/example/ec-orders/internal/domain/product"
	"github.com/example/ec-orders/internal/domain/user"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain sentinels onto HTTP status codes. Errors
// outside the taxonomy become a generic 500 without leaking internals.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrMissingAddress),
		errors.Is(err, order.ErrMissingPaymentMethod),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, product.ErrInvalidName),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidName),
		errors.Is(err, auth.ErrPasswordTooShort):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, user.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, user.ErrUserAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("[API] Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
