package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/checkout"
)

type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, userID string) (*checkout.Result, error)
}

type checkoutHandler struct {
	service CheckoutService
	timeout time.Duration
	log     zerolog.Logger
}

func newCheckoutHandler(service CheckoutService, timeout time.Duration, log zerolog.Logger) *checkoutHandler {
	return &checkoutHandler{service: service, timeout: timeout, log: log}
}

// POST /api/v1/checkout
func (h *checkoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	result, err := h.service.CreateCheckoutSession(ctx, userID)
	if err != nil {
		handleDomainError(w, h.log, getRequestID(r.Context()), err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}
