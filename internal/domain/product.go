package domain

// Product as the cart sees it: an id plus the attributes needed for
// pricing and display. Owned by the product catalog, referenced by id.
type Product struct {
	ID         string `bson:"_id,omitempty" json:"id"`
	Name       string `bson:"product_name" json:"product_name"`
	PriceCents Cents  `bson:"product_price_cents" json:"product_price_cents"`
}

// User carries the identity fields fulfillment and checkout need.
type User struct {
	ID       string `bson:"_id,omitempty" json:"id"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
}
