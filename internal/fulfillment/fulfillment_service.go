// Package fulfillment is the post-payment pipeline: resolve the order,
// render an invoice document, email it, and clean the artifact up no
// matter what happened.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
	"github.com/rahulnakum14/ecommerce-api-go/internal/repository"
)

const (
	emailSubject = "Your Order Invoice"

	emailBody = `<h1>Order Placed Successfully</h1>
<p>Dear %s,</p>
<p>Thank you for your order. Please find the attached invoice for your purchase.</p>`
)

type Service struct {
	users    repository.UserRepository
	carts    repository.CartRepository
	products repository.ProductRepository
	renderer Renderer
	mailer   Mailer
	dir      string
	log      zerolog.Logger
}

// NewService wires the pipeline. dir is the scratch directory for invoice
// files, created on first use.
func NewService(users repository.UserRepository, carts repository.CartRepository, products repository.ProductRepository, renderer Renderer, mailer Mailer, dir string, log zerolog.Logger) *Service {
	return &Service{
		users:    users,
		carts:    carts,
		products: products,
		renderer: renderer,
		mailer:   mailer,
		dir:      dir,
		log:      log.With().Str("component", "fulfillment").Logger(),
	}
}

// FulfillOrder renders the user's invoice and emails it. Re-invoking is
// safe: the document is regenerated and re-sent rather than tracked. The
// temp file is removed whether or not the email goes out.
func (s *Service) FulfillOrder(ctx context.Context, userID string) (string, error) {
	receipt, err := s.buildReceipt(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.Error{Kind: domain.KindDocumentRender, Entity: "invoice", Msg: "failed to prepare invoice directory", Err: err}
	}

	// Unique per call so concurrent orders never collide on disk.
	path := filepath.Join(s.dir, fmt.Sprintf("invoice_%s_%s.pdf", userID, uuid.NewString()))

	if err := s.renderer.Render(receipt, path); err != nil {
		s.removeArtifact(path)
		return "", &domain.Error{Kind: domain.KindDocumentRender, Entity: "invoice", Msg: "failed to render invoice", Err: err}
	}
	defer s.removeArtifact(path)

	body := fmt.Sprintf(emailBody, receipt.Customer)
	if err := s.mailer.Send(ctx, receipt.Email, emailSubject, body, path); err != nil {
		return "", &domain.Error{Kind: domain.KindEmailDelivery, Entity: "invoice", Msg: "failed to email invoice", Err: err}
	}

	s.log.Info().Str("user_id", userID).Msg("invoice rendered and emailed")
	return domain.MsgInvoiceSent, nil
}

// PlacedOrderNotice is the fixed confirmation for generic callers.
func (s *Service) PlacedOrderNotice() string {
	return domain.MsgOrderSuccess
}

// buildReceipt loads user and cart and resolves each line's product name.
// Lines whose product has vanished from the catalog are skipped, matching
// the display-only nature of the invoice.
func (s *Service) buildReceipt(ctx context.Context, userID string) (*Receipt, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, &domain.Error{Kind: domain.KindNotFound, Entity: "order", ID: userID, Msg: domain.MsgUserCartNotFound}
	}
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, &domain.Error{Kind: domain.KindNotFound, Entity: "order", ID: userID, Msg: domain.MsgUserCartNotFound}
	}
	if err != nil {
		return nil, err
	}

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

	receipt := &Receipt{
		Customer:   user.Username,
		Email:      user.Email,
		TotalCents: cart.TotalCents,
	}
	for _, line := range cart.Lines {
		product, ok := byID[line.ProductID]
		if !ok {
			continue
		}
		receipt.Lines = append(receipt.Lines, ReceiptLine{
			Name:       product.Name,
			Quantity:   line.Quantity,
			PriceCents: line.PriceCents,
		})
	}
	return receipt, nil
}

func (s *Service) removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("path", path).Msg("failed to remove invoice artifact")
	}
}
