package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/cart"
	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
)

// CartService is the engine surface the cart handler drives.
type CartService interface {
	GetCartDetails(ctx context.Context, userID string) (*cart.Details, error)
	AddProduct(ctx context.Context, userID, productID string, quantity int64) (*domain.Cart, error)
	RemoveProduct(ctx context.Context, userID, productID string) (*domain.Cart, error)
}

type cartHandler struct {
	service CartService
	timeout time.Duration
	log     zerolog.Logger
}

func newCartHandler(service CartService, timeout time.Duration, log zerolog.Logger) *cartHandler {
	return &cartHandler{service: service, timeout: timeout, log: log}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CartResponseDTO struct {
	Message string       `json:"message"`
	Cart    *domain.Cart `json:"cart"`
}

// GET /api/v1/cart
func (h *cartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	details, err := h.service.GetCartDetails(ctx, userID)
	if err != nil {
		handleDomainError(w, h.log, getRequestID(r.Context()), err)
		return
	}

	respondJSON(w, http.StatusOK, details)
}

// POST /api/v1/cart/items
func (h *cartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" || req.Quantity == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id and quantity is required.")
		return
	}

	updated, err := h.service.AddProduct(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		handleDomainError(w, h.log, getRequestID(r.Context()), err)
		return
	}

	respondJSON(w, http.StatusCreated, CartResponseDTO{
		Message: domain.MsgProductAdded,
		Cart:    updated,
	})
}

// DELETE /api/v1/cart/items/{productID}
func (h *cartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "productID")

	updated, err := h.service.RemoveProduct(ctx, userID, productID)
	if err != nil {
		handleDomainError(w, h.log, getRequestID(r.Context()), err)
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{
		Message: domain.MsgProductRemoved,
		Cart:    updated,
	})
}
