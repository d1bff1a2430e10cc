package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

var (
	// ErrEmptyCart is returned by Checkout when there is nothing to buy.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrCartLoading is returned by Checkout while the cart is still loading.
	ErrCartLoading = errors.New("cart is still loading")
)

// CheckoutPath is the storefront route creating a checkout.
const CheckoutPath = "/api/shopify/checkout"

// ProductsPath is the storefront route returning typed products by handle.
const ProductsPath = "/api/shopify/products/"

// ServerError is an unexpected answer from the storefront server.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// CheckoutOptions carries the optional shipping details of a checkout.
type CheckoutOptions struct {
	ShippingAddress  *model.ShippingAddress
	RequiresShipping *bool
}

// CheckoutResult is the outcome of a successful checkout.
type CheckoutResult struct {
	CheckoutURL string
	CartID      string
}

// ServerClient talks to the storefront server on behalf of the cart.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewServerClient creates a client for the storefront server at baseURL.
func NewServerClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *ServerClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ServerClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With().Str("component", "server-client").Logger(),
	}
}

// Checkout posts the store's lines to the checkout endpoint. An empty or
// still-loading cart returns without contacting the server.
func (c *ServerClient) Checkout(ctx context.Context, store *Store, opts CheckoutOptions) (*CheckoutResult, error) {
	lines, ok := store.Items()
	if !ok {
		return nil, ErrCartLoading
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	req := model.CheckoutRequest{
		Lines:            Snapshot(lines),
		ShippingAddress:  opts.ShippingAddress,
		RequiresShipping: opts.RequiresShipping,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CheckoutPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Msg("checkout request failed")
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, serverError(resp.StatusCode, payload)
	}

	var out model.CheckoutResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}

	result := &CheckoutResult{CheckoutURL: out.CheckoutURL}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "cartId" {
			result.CartID = cookie.Value
		}
	}
	if result.CartID == "" && out.Cart != nil {
		result.CartID = out.Cart.ID
	}

	c.logger.Info().Int("line_count", len(lines)).Str("cart_id", result.CartID).Msg("checkout created")
	return result, nil
}

// Products fetches the typed products behind a catalog handle.
func (c *ServerClient) Products(ctx context.Context, handle string) ([]catalog.Product, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ProductsPath+url.PathEscape(handle), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build product request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("product request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read product response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp.StatusCode, payload)
	}

	var out struct {
		Products []catalog.Product `json:"products"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	return out.Products, nil
}

func serverError(status int, payload []byte) *ServerError {
	var errResp model.ErrorResponse
	msg := strings.TrimSpace(string(payload))
	if json.Unmarshal(payload, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	return &ServerError{Status: status, Message: msg}
}

// Snapshot projects cart lines onto checkout lines.
func Snapshot(lines []model.CartLineItem) []model.CheckoutLine {
	out := make([]model.CheckoutLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, model.CheckoutLine{
			MerchandiseID: l.ProductID,
			Quantity:      l.Quantity,
		})
	}
	return out
}
