// Package payment implements the checkout.Provider surface against
// Stripe. All calls go through a circuit breaker so a degraded provider
// sheds load fast instead of queueing requests.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/rahulnakum14/ecommerce-api-go/internal/checkout"
)

const callTimeout = 15 * time.Second

type StripeProvider struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker[any]
}

// NewStripeProvider returns nil when secretKey is empty, which checkout
// treats as provider-not-configured.
func NewStripeProvider(secretKey string) *StripeProvider {
	if secretKey == "" {
		return nil
	}

	api := &client.API{}
	api.Init(secretKey, nil)

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "stripe",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &StripeProvider{api: api, breaker: breaker}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, name string) (string, error) {
	v, err := p.call(ctx, func(ctx context.Context) (any, error) {
		params := &stripe.CustomerParams{Name: stripe.String(name)}
		params.Context = ctx
		return p.api.Customers.New(params)
	})
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return v.(*stripe.Customer).ID, nil
}

func (p *StripeProvider) CreateInvoice(ctx context.Context, customerID string) (string, error) {
	v, err := p.call(ctx, func(ctx context.Context) (any, error) {
		params := &stripe.InvoiceParams{Customer: stripe.String(customerID)}
		params.Context = ctx
		return p.api.Invoices.New(params)
	})
	if err != nil {
		return "", fmt.Errorf("stripe create invoice: %w", err)
	}
	return v.(*stripe.Invoice).ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, sp checkout.SessionParams) (*checkout.Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(sp.LineItems))
	for _, item := range sp.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(int64(item.UnitAmountCents)),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	v, err := p.call(ctx, func(ctx context.Context) (any, error) {
		params := &stripe.CheckoutSessionParams{
			Customer:   stripe.String(sp.CustomerID),
			LineItems:  lineItems,
			Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
			SuccessURL: stripe.String(sp.SuccessURL),
			CancelURL:  stripe.String(sp.CancelURL),
			ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
				AllowedCountries: stripe.StringSlice(sp.AllowedCountries),
			},
		}
		params.Context = ctx
		return p.api.CheckoutSessions.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}

	session := v.(*stripe.CheckoutSession)
	return &checkout.Session{ID: session.ID, URL: session.URL}, nil
}

// call runs one provider request under the breaker with a hard timeout,
// so a hanging provider cannot hang the enclosing request.
func (p *StripeProvider) call(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return p.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
}
