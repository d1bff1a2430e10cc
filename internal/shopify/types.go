package shopify

import "storefront/internal/model"

// CartInput is the input of the cartCreate mutation.
type CartInput struct {
	Lines         []CartLineInput   `json:"lines"`
	Attributes    []model.Attribute `json:"attributes,omitempty"`
	BuyerIdentity *BuyerIdentity    `json:"buyerIdentity,omitempty"`
}

// CartLineInput is one merchandise line of a cart.
type CartLineInput struct {
	MerchandiseID string            `json:"merchandiseId"`
	Quantity      int               `json:"quantity"`
	Attributes    []model.Attribute `json:"attributes,omitempty"`
}

// BuyerIdentity carries the shopper's delivery preferences.
type BuyerIdentity struct {
	DeliveryAddressPreferences []DeliveryAddressPreference `json:"deliveryAddressPreferences,omitempty"`
}

// DeliveryAddressPreference wraps a single preferred address.
type DeliveryAddressPreference struct {
	DeliveryAddress MailingAddressInput `json:"deliveryAddress"`
}

// MailingAddressInput is the storefront address input.
type MailingAddressInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// CartCreateResult is the outcome of cartCreate. CheckoutURL has already
// been passed through the client's DomainPolicy.
type CartCreateResult struct {
	CartID      string
	CheckoutURL string
	UserErrors  []UserError
}

type cartCreatePayload struct {
	CartCreate struct {
		Cart *struct {
			ID          string `json:"id"`
			CheckoutURL string `json:"checkoutUrl"`
		} `json:"cart"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"cartCreate"`
}

// Money is a decimal amount as sent by the storefront API.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// VariantNode is a product variant as returned by the storefront API.
type VariantNode struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Price            Money  `json:"price"`
	AvailableForSale bool   `json:"availableForSale"`
}

// ProductNode is the untyped product payload. internal/catalog turns it into
// a typed product.
type ProductNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	PriceRange  struct {
		MinVariantPrice Money `json:"minVariantPrice"`
	} `json:"priceRange"`
	Variants struct {
		Edges []struct {
			Node VariantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

// VariantList flattens the variant edges.
func (p ProductNode) VariantList() []VariantNode {
	out := make([]VariantNode, 0, len(p.Variants.Edges))
	for _, e := range p.Variants.Edges {
		out = append(out, e.Node)
	}
	return out
}

type productPayload struct {
	Product *ProductNode `json:"product"`
}

type productsPayload struct {
	Products struct {
		Edges []struct {
			Node ProductNode `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// DraftOrderInput is the Admin REST draft_order body.
type DraftOrderInput struct {
	LineItems        []DraftOrderLineItem `json:"line_items"`
	Note             string               `json:"note,omitempty"`
	ShippingAddress  *DraftOrderAddress   `json:"shipping_address"`
	RequiresShipping bool                 `json:"requires_shipping"`
}

// DraftOrderLineItem is either a custom line (Title, Price, Custom) or a
// catalog line (VariantID).
type DraftOrderLineItem struct {
	Title      string             `json:"title,omitempty"`
	Price      string             `json:"price,omitempty"`
	Quantity   int                `json:"quantity"`
	Custom     bool               `json:"custom,omitempty"`
	VariantID  string             `json:"variant_id,omitempty"`
	Properties []LineItemProperty `json:"properties,omitempty"`
}

// LineItemProperty is a name/value pair shown on the order.
type LineItemProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DraftOrderAddress is the Admin REST address object.
type DraftOrderAddress struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// DraftOrder is the subset of the created draft order this service uses.
type DraftOrder struct {
	ID         int64  `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"status"`
	Note       string `json:"note"`
}

// Draft order statuses.
const (
	DraftOrderOpen        = "open"
	DraftOrderInvoiceSent = "invoice_sent"
	DraftOrderCompleted   = "completed"
)

// Invoice is the body of send_invoice.
type Invoice struct {
	To            string `json:"to"`
	Subject       string `json:"subject"`
	CustomMessage string `json:"custom_message"`
}

// AdminProduct is a product from the Admin REST listing.
type AdminProduct struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Handle   string `json:"handle"`
	Status   string `json:"status"`
	Variants []struct {
		ID    int64  `json:"id"`
		Price string `json:"price"`
	} `json:"variants"`
}

// FirstVariantPrice returns the first variant price, or "0.00".
func (p AdminProduct) FirstVariantPrice() string {
	if len(p.Variants) == 0 || p.Variants[0].Price == "" {
		return "0.00"
	}
	return p.Variants[0].Price
}
