package model

// Attribute is a free-form key/value pair attached to a cart line.
type Attribute struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// CheckoutLine is one line of a checkout request. Older clients send
// variantId instead of merchandiseId.
type CheckoutLine struct {
	MerchandiseID string      `json:"merchandiseId"`
	VariantID     string      `json:"variantId,omitempty"`
	Quantity      int         `json:"quantity" validate:"gte=1"`
	Attributes    []Attribute `json:"attributes,omitempty" validate:"omitempty,dive"`
}

// ID returns the merchandise id of the line, falling back to the variant id.
func (l CheckoutLine) ID() string {
	if l.MerchandiseID != "" {
		return l.MerchandiseID
	}
	return l.VariantID
}

// ShippingAddress is a structured delivery address.
type ShippingAddress struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Address1  string `json:"address1" validate:"required"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city" validate:"required"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// CheckoutRequest is the payload of POST /api/shopify/checkout.
type CheckoutRequest struct {
	Lines            []CheckoutLine   `json:"lines" validate:"required,min=1,dive"`
	Attributes       []Attribute      `json:"attributes,omitempty" validate:"omitempty,dive"`
	ShippingAddress  *ShippingAddress `json:"shippingAddress,omitempty" validate:"omitempty"`
	RequiresShipping *bool            `json:"requiresShipping,omitempty"`
}

// ShippingRequired defaults to true when the client did not say otherwise.
func (r *CheckoutRequest) ShippingRequired() bool {
	return r.RequiresShipping == nil || *r.RequiresShipping
}

// CheckoutResponse is returned after a platform cart was created.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
	CartID      string `json:"-"`
	Cart        *Cart  `json:"cart,omitempty"`
}

// Cart is the platform cart summary echoed back to the client.
type Cart struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
}

// CartRequest is the payload of POST /api/shopify/cart.
type CartRequest struct {
	Items []CheckoutLine `json:"items" validate:"required,min=1,dive"`
}

// CartResponse is returned from POST /api/shopify/cart.
type CartResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}
