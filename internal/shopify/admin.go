package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// AdminClient is the Admin REST gateway.
type AdminClient struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewAdminClient creates an admin client.
func NewAdminClient(cfg Config, httpClient *http.Client, logger zerolog.Logger) *AdminClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AdminClient{
		cfg:        cfg,
		baseURL:    fmt.Sprintf("%s/admin/api/%s", cfg.baseURL(), cfg.apiVersion()),
		httpClient: httpClient,
		logger:     logger.With().Str("component", "shopify-admin").Logger(),
	}
}

func (c *AdminClient) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode admin request: %w", err)
		}
	}

	headers := map[string]string{"X-Shopify-Access-Token": c.cfg.AdminToken}
	payload, err := doJSON(ctx, c.httpClient, method, c.baseURL+path, headers, body)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("admin request failed")
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode admin response: %w", err)
	}
	return nil
}

// CreateDraftOrder posts a draft order.
func (c *AdminClient) CreateDraftOrder(ctx context.Context, input DraftOrderInput) (*DraftOrder, error) {
	var resp struct {
		DraftOrder *DraftOrder `json:"draft_order"`
	}
	req := struct {
		DraftOrder DraftOrderInput `json:"draft_order"`
	}{DraftOrder: input}

	if err := c.do(ctx, http.MethodPost, "/draft_orders.json", req, &resp); err != nil {
		return nil, err
	}
	if resp.DraftOrder == nil || resp.DraftOrder.ID == 0 {
		return nil, fmt.Errorf("draft order response has no id")
	}
	if resp.DraftOrder.InvoiceURL == "" {
		return nil, fmt.Errorf("draft order %d has no invoice url", resp.DraftOrder.ID)
	}
	return resp.DraftOrder, nil
}

// SendInvoice emails the invoice of a draft order.
func (c *AdminClient) SendInvoice(ctx context.Context, draftOrderID int64, invoice Invoice) error {
	req := struct {
		Invoice Invoice `json:"draft_order_invoice"`
	}{Invoice: invoice}
	path := fmt.Sprintf("/draft_orders/%d/send_invoice.json", draftOrderID)
	return c.do(ctx, http.MethodPost, path, req, nil)
}

// GetDraftOrder fetches a draft order by id. A 404 is ErrNotFound.
func (c *AdminClient) GetDraftOrder(ctx context.Context, draftOrderID int64) (*DraftOrder, error) {
	var resp struct {
		DraftOrder *DraftOrder `json:"draft_order"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/draft_orders/%d.json", draftOrderID), nil, &resp)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && te.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if resp.DraftOrder == nil {
		return nil, ErrNotFound
	}
	return resp.DraftOrder, nil
}

// ListProducts lists products with the given status ("active" when empty).
func (c *AdminClient) ListProducts(ctx context.Context, status string) ([]AdminProduct, error) {
	if status == "" {
		status = "active"
	}
	var resp struct {
		Products []AdminProduct `json:"products"`
	}
	path := "/products.json?status=" + url.QueryEscape(status)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}
