// Package shopify talks to the commerce platform: the Storefront GraphQL API
// for carts and products and the Admin REST API for draft orders.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultAPIVersion is the platform API version used when none is configured.
const DefaultAPIVersion = "2024-01"

// Config holds the platform coordinates and credentials.
type Config struct {
	StoreDomain     string
	StorefrontToken string
	AdminToken      string
	APIVersion      string
	DomainPolicy    DomainPolicy
}

func (c Config) apiVersion() string {
	if c.APIVersion == "" {
		return DefaultAPIVersion
	}
	return c.APIVersion
}

// baseURL strips any scheme or trailing slash from the configured domain.
func (c Config) baseURL() string {
	domain := strings.TrimPrefix(strings.TrimPrefix(c.StoreDomain, "https://"), "http://")
	return "https://" + strings.TrimSuffix(domain, "/")
}

// Client is the Storefront GraphQL gateway.
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a storefront client. A nil httpClient uses
// http.DefaultClient; no timeout is imposed beyond the request context.
func NewClient(cfg Config, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:        cfg,
		endpoint:   fmt.Sprintf("%s/api/%s/graphql.json", cfg.baseURL(), cfg.apiVersion()),
		httpClient: httpClient,
		logger:     logger.With().Str("component", "shopify-storefront").Logger(),
	}
}

// Endpoint returns the GraphQL endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage    `json:"data"`
	Errors []GraphQLErrorItem `json:"errors"`
}

// Request posts one GraphQL document and decodes "data" into out.
func (c *Client) Request(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}

	headers := map[string]string{"X-Shopify-Storefront-Access-Token": c.cfg.StorefrontToken}
	payload, err := doJSON(ctx, c.httpClient, http.MethodPost, c.endpoint, headers, body)
	if err != nil {
		c.logger.Error().Err(err).Msg("storefront request failed")
		return err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{Errors: resp.Errors}
		c.logger.Error().Err(gqlErr).Msg("storefront returned graphql errors")
		return gqlErr
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}

// CreateCart runs cartCreate. User errors are returned in the result, not as
// an error. The checkout URL is rewritten by the DomainPolicy.
func (c *Client) CreateCart(ctx context.Context, input CartInput) (*CartCreateResult, error) {
	var payload cartCreatePayload
	if err := c.Request(ctx, cartCreateMutation, map[string]any{"input": input}, &payload); err != nil {
		return nil, err
	}

	result := &CartCreateResult{UserErrors: payload.CartCreate.UserErrors}
	if len(result.UserErrors) > 0 {
		return result, nil
	}

	cart := payload.CartCreate.Cart
	if cart == nil || cart.CheckoutURL == "" {
		return nil, fmt.Errorf("cartCreate returned no cart")
	}

	checkoutURL, err := c.cfg.DomainPolicy.Apply(cart.CheckoutURL)
	if err != nil {
		return nil, err
	}
	result.CartID = cart.ID
	result.CheckoutURL = checkoutURL

	c.logger.Debug().
		Str("cart_id", cart.ID).
		Str("domain_policy", c.cfg.DomainPolicy.String()).
		Msg("cart created")
	return result, nil
}

// ProductByHandle fetches one product. A missing product is ErrNotFound.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*ProductNode, error) {
	var payload productPayload
	if err := c.Request(ctx, productByHandleQuery, map[string]any{"handle": handle}, &payload); err != nil {
		return nil, err
	}
	if payload.Product == nil {
		return nil, ErrNotFound
	}
	return payload.Product, nil
}

// Products fetches up to first products.
func (c *Client) Products(ctx context.Context, first int) ([]ProductNode, error) {
	if first <= 0 {
		first = 100
	}
	var payload productsPayload
	if err := c.Request(ctx, productsQuery, map[string]any{"first": first}, &payload); err != nil {
		return nil, err
	}
	out := make([]ProductNode, 0, len(payload.Products.Edges))
	for _, e := range payload.Products.Edges {
		out = append(out, e.Node)
	}
	return out, nil
}

// doJSON performs one JSON request and returns the body of a 2xx answer.
// Any other status becomes a *TransportError.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Status: resp.StatusCode, Body: string(payload)}
	}
	return payload, nil
}
