// Package httpapi is the thin caller surface over the engine: request
// decoding, auth-context plumbing, and the one place domain failures are
// mapped to transport status codes.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/pkg/metrics"
)

type Services struct {
	Cart        CartService
	Catalog     CatalogService
	Checkout    CheckoutService
	Fulfillment FulfillmentService
}

// NewRouter mounts the API plus health and metrics endpoints.
func NewRouter(svcs Services, timeout time.Duration, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(userIDMiddleware)

	cart := newCartHandler(svcs.Cart, timeout, log)
	catalog := newCatalogHandler(svcs.Catalog, timeout, log)
	checkoutH := newCheckoutHandler(svcs.Checkout, timeout, log)
	orders := newOrderHandler(svcs.Fulfillment, timeout, log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", catalog.ListProducts)
		r.Get("/products/{productID}", catalog.GetProduct)

		r.Get("/cart", cart.GetCart)
		r.Post("/cart/items", cart.AddItem)
		r.Delete("/cart/items/{productID}", cart.RemoveItem)

		r.Post("/checkout", checkoutH.CreateSession)

		r.Post("/orders/fulfill", orders.Fulfill)
		r.Get("/orders/placed", orders.Placed)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}
