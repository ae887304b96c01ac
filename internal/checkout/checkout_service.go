// Package checkout builds a priced snapshot of the cart and drives the
// payment provider through its customer -> invoice -> session pipeline.
// It reads the cart but never mutates it.
package checkout

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
	"github.com/rahulnakum14/ecommerce-api-go/internal/repository"
)

// AllowedShippingCountries is the shipping-region restriction handed to
// the provider on every session.
var AllowedShippingCountries = []string{"US", "CA", "GB", "AU", "NZ", "SG", "JP"}

// LineItem is one priced snapshot row sent to the provider. Decoupled
// from the live cart: later cart mutations do not affect an open session.
type LineItem struct {
	Name            string
	UnitAmountCents domain.Cents
	Quantity        int64
}

type SessionParams struct {
	CustomerID       string
	LineItems        []LineItem
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
}

type Session struct {
	ID  string
	URL string
}

// Provider is the external payment processor surface the orchestrator
// drives. Implementations own credentials and wire formats.
type Provider interface {
	CreateCustomer(ctx context.Context, name string) (string, error)
	CreateInvoice(ctx context.Context, customerID string) (string, error)
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
}

// CartReader serves cart reads through the cache layer.
type CartReader interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
}

// Result is the opaque bundle handed back to the caller for redirecting
// the end user.
type Result struct {
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
	SessionID  string `json:"session_id"`
	InvoiceID  string `json:"invoice_id"`
}

type Service struct {
	carts    CartReader
	products repository.ProductRepository
	users    repository.UserRepository
	provider Provider
	baseURL  string
	log      zerolog.Logger
}

// NewService wires the orchestrator. A nil provider means no payment
// credential was configured; checkout then fails fast instead of half-way
// through the pipeline.
func NewService(carts CartReader, products repository.ProductRepository, users repository.UserRepository, provider Provider, baseURL string, log zerolog.Logger) *Service {
	return &Service{
		carts:    carts,
		products: products,
		users:    users,
		provider: provider,
		baseURL:  baseURL,
		log:      log.With().Str("component", "checkout").Logger(),
	}
}

// CreateCheckoutSession opens a provider session for the user's cart.
// Every line is re-resolved against the catalog at its current name and
// price; a product that has since been deleted aborts the checkout
// naming the offending id rather than silently dropping the item.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID string) (*Result, error) {
	if s.provider == nil {
		return nil, &domain.Error{Kind: domain.KindProviderNotConfigured, Entity: "payment", Msg: domain.MsgStripeKeyMissing}
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, &domain.Error{Kind: domain.KindNotFound, Entity: "cart", ID: userID, Msg: domain.MsgCartNotFound}
	}

	lineItems, err := s.buildLineItems(ctx, cart)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domain.NotFoundErr("user", userID)
	}
	if err != nil {
		return nil, err
	}

	customerID, err := s.provider.CreateCustomer(ctx, user.Username)
	if err != nil {
		return nil, s.providerErr("create customer", err)
	}

	invoiceID, err := s.provider.CreateInvoice(ctx, customerID)
	if err != nil {
		return nil, s.providerErr("create invoice", err)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, SessionParams{
		CustomerID:       customerID,
		LineItems:        lineItems,
		SuccessURL:       s.baseURL + "order/order-placed-successfully",
		CancelURL:        s.baseURL + "order/error-in-payment",
		AllowedCountries: AllowedShippingCountries,
	})
	if err != nil {
		return nil, s.providerErr("create session", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("session_id", session.ID).
		Str("invoice_id", invoiceID).
		Msg("checkout session created")

	return &Result{
		Message:    domain.MsgPayPrompt,
		PaymentURL: session.URL,
		SessionID:  session.ID,
		InvoiceID:  invoiceID,
	}, nil
}

// buildLineItems snapshots the cart at the catalog's current prices.
func (s *Service) buildLineItems(ctx context.Context, cart *domain.Cart) ([]LineItem, error) {
	ids := make([]string, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lineItems := make([]LineItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, &domain.Error{Kind: domain.KindNotFound, Entity: "product", ID: line.ProductID, Msg: domain.MsgProductNotFound}
		}
		lineItems = append(lineItems, LineItem{
			Name:            product.Name,
			UnitAmountCents: product.PriceCents,
			Quantity:        line.Quantity,
		})
	}
	return lineItems, nil
}

func (s *Service) providerErr(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("payment provider call failed")
	return &domain.Error{Kind: domain.KindProvider, Entity: "payment", Msg: "payment provider failure", Err: err}
}
