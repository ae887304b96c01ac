package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type FulfillmentService interface {
	FulfillOrder(ctx context.Context, userID string) (string, error)
	PlacedOrderNotice() string
}

type orderHandler struct {
	service FulfillmentService
	timeout time.Duration
	log     zerolog.Logger
}

func newOrderHandler(service FulfillmentService, timeout time.Duration, log zerolog.Logger) *orderHandler {
	return &orderHandler{service: service, timeout: timeout, log: log}
}

type OrderResponseDTO struct {
	Message string `json:"message"`
}

// POST /api/v1/orders/fulfill
func (h *orderHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	msg, err := h.service.FulfillOrder(ctx, userID)
	if err != nil {
		handleDomainError(w, h.log, getRequestID(r.Context()), err)
		return
	}

	respondJSON(w, http.StatusOK, OrderResponseDTO{Message: msg})
}

// GET /api/v1/orders/placed
func (h *orderHandler) Placed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, OrderResponseDTO{Message: h.service.PlacedOrderNotice()})
}
