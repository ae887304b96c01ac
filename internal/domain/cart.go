package domain

import "time"

// Cents is a money amount in integer minor units (USD cents). All price
// arithmetic is done in cents so cart totals stay exact.
type Cents int64

// CartLine is one product inside a cart. PriceCents is denormalized
// (quantity times the product's unit price as of the last mutation that
// touched this line).
type CartLine struct {
	ProductID  string `bson:"product_id" json:"product_id"`
	Quantity   int64  `bson:"quantity" json:"quantity"`
	PriceCents Cents  `bson:"price_cents" json:"price_cents"`
}

// Cart is the per-user aggregate. TotalCents must equal the sum of line
// prices after every successful mutation; Version backs the optimistic
// compare-and-swap on persist.
type Cart struct {
	ID         string     `bson:"_id,omitempty" json:"id"`
	UserID     string     `bson:"user_id" json:"user_id"`
	Lines      []CartLine `bson:"lines" json:"lines"`
	TotalCents Cents      `bson:"total_cents" json:"total_cents"`
	Version    int64      `bson:"version" json:"-"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

// Empty reports whether the cart has no lines. An empty cart is a valid
// state, not a fault.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Lines) == 0
}

// Line returns the line for productID, or nil if the product is not in
// the cart.
func (c *Cart) Line(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}
