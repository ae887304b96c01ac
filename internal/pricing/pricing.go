// Package pricing holds the pure line-item arithmetic for the cart
// aggregate. Nothing here touches storage or the cache, so every rule is
// testable in isolation.
package pricing

import (
	"errors"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
)

var (
	// ErrInvalidQuantity rejects zero and negative quantities outright.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrLineNotFound signals a remove for a product the cart does not hold.
	ErrLineNotFound = errors.New("line not found in cart")
)

// LineTotal computes quantity * unit price.
func LineTotal(unitPrice domain.Cents, quantity int64) (domain.Cents, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	if unitPrice < 0 {
		return 0, errors.New("unit price must not be negative")
	}
	return unitPrice * domain.Cents(quantity), nil
}

// MergeLine folds delta quantity of a product into the line set. An
// existing line for the product is incremented, never duplicated;
// otherwise a new line is appended. The input slice is not mutated.
// The returned delta is the amount to add to the cart total.
func MergeLine(lines []domain.CartLine, productID string, unitPrice domain.Cents, deltaQuantity int64) ([]domain.CartLine, domain.Cents, error) {
	deltaPrice, err := LineTotal(unitPrice, deltaQuantity)
	if err != nil {
		return nil, 0, err
	}

	updated := make([]domain.CartLine, len(lines))
	copy(updated, lines)

	for i := range updated {
		if updated[i].ProductID == productID {
			updated[i].Quantity += deltaQuantity
			updated[i].PriceCents += deltaPrice
			return updated, deltaPrice, nil
		}
	}

	updated = append(updated, domain.CartLine{
		ProductID:  productID,
		Quantity:   deltaQuantity,
		PriceCents: deltaPrice,
	})
	return updated, deltaPrice, nil
}

// RemoveLine drops the product's line and returns its price so the caller
// can subtract it from the cart total. When the result is empty the
// caller must zero the total instead of trusting the subtraction.
func RemoveLine(lines []domain.CartLine, productID string) ([]domain.CartLine, domain.Cents, error) {
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		removed := lines[i].PriceCents
		updated := make([]domain.CartLine, 0, len(lines)-1)
		updated = append(updated, lines[:i]...)
		updated = append(updated, lines[i+1:]...)
		return updated, removed, nil
	}
	return nil, 0, ErrLineNotFound
}

// Total sums line prices. Used to check the aggregate invariant, not to
// maintain it; mutations apply deltas instead.
func Total(lines []domain.CartLine) domain.Cents {
	var sum domain.Cents
	for _, l := range lines {
		sum += l.PriceCents
	}
	return sum
}
