package domain

// User-facing message constants, grouped the way the API presents them.

const (
	MsgProductAdded    = "Product added to cart successfully."
	MsgProductRemoved  = "Product removed from cart successfully."
	MsgProductNotFound = "Product Not Found."
	MsgProductInCart   = "Product Does not Exist in the cart."
	MsgInvalidIDFormat = "Invalid product ID format."

	MsgCartNotFound     = "Cart not found"
	MsgUserCartNotFound = "User or Cart not found"

	MsgStripeKeyMissing = "Stripe key not found"
	MsgOrderSuccess     = "Order Placed Successfully"
	MsgPayPrompt        = "Click on URL to pay!"
	MsgInvoiceSent      = "Order Placed Successfully and invoice sent to your email"
)
