package model

// ProductSummary is one row of GET /api/shopify/products.
type ProductSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Price  string `json:"price"`
	Handle string `json:"handle"`
}

// ProductListResponse wraps the product listing.
type ProductListResponse struct {
	Products []ProductSummary `json:"products"`
}
