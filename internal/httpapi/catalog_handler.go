package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
)

type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type catalogHandler struct {
	service CatalogService
	timeout time.Duration
	log     zerolog.Logger
}

func newCatalogHandler(service CatalogService, timeout time.Duration, log zerolog.Logger) *catalogHandler {
	return &catalogHandler{service: service, timeout: timeout, log: log}
}

// GET /api/v1/products
func (h *catalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.service.ListProducts(ctx)
	if err != nil {
		handleDomainError(w, h.log, getRequestID(r.Context()), err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{productID}
func (h *catalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.service.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		handleDomainError(w, h.log, getRequestID(r.Context()), err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}
