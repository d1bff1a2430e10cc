// Package integration runs the HTTP API against PostgreSQL and a fake
// commerce platform.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/shopify"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// AdminAPIKey guards the admin routes of the test server.
const AdminAPIKey = "test-admin-key"

// CheckoutHost replaces the host of every checkout URL.
const CheckoutHost = "checkout.daydreamers.example"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the ledger schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}
	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes every ledger entry.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM order_ledger"); err != nil {
		t.Logf("failed to clean order_ledger: %v", err)
	}
}

// FakeShop answers the storefront GraphQL and admin REST calls the service
// makes.
type FakeShop struct {
	Server *httptest.Server

	mu               sync.Mutex
	invoiceFailures  int
	invoiceCalls     int
	nextDraftOrderID int64
	drafts           map[int64]string
	carts            []json.RawMessage
}

// NewFakeShop starts a TLS server playing the commerce platform.
func NewFakeShop(t *testing.T) *FakeShop {
	t.Helper()

	shop := &FakeShop{nextDraftOrderID: 1000, drafts: map[int64]string{}}
	shop.Server = httptest.NewTLSServer(http.HandlerFunc(shop.serve))
	t.Cleanup(shop.Server.Close)
	return shop
}

// FailInvoices makes the next n send_invoice calls fail with a 502.
func (s *FakeShop) FailInvoices(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoiceFailures = n
}

// InvoiceCalls reports how many send_invoice calls were received.
func (s *FakeShop) InvoiceCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoiceCalls
}

// Carts returns the cartCreate inputs received so far.
func (s *FakeShop) Carts() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage{}, s.carts...)
}

func (s *FakeShop) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/graphql.json"):
		s.serveGraphQL(w, body)

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/draft_orders.json"):
		id := s.nextDraftOrderID
		s.nextDraftOrderID++
		s.drafts[id] = shopify.DraftOrderOpen
		fmt.Fprintf(w, `{"draft_order":{"id":%d,"invoice_url":"https://shop.example.com/invoices/%d","status":"open","note":"Puppy Palentines Order for Biscuit"}}`, id, id)

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/send_invoice.json"):
		s.invoiceCalls++
		if s.invoiceFailures > 0 {
			s.invoiceFailures--
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"errors":"mail service unavailable"}`))
			return
		}
		var id int64
		fmt.Sscanf(r.URL.Path[strings.Index(r.URL.Path, "/draft_orders/"):], "/draft_orders/%d/send_invoice.json", &id)
		s.drafts[id] = shopify.DraftOrderInvoiceSent
		w.Write([]byte(`{"draft_order_invoice":{}}`))

	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/draft_orders/"):
		var id int64
		fmt.Sscanf(r.URL.Path[strings.Index(r.URL.Path, "/draft_orders/"):], "/draft_orders/%d.json", &id)
		status, ok := s.drafts[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":"Not Found"}`))
			return
		}
		fmt.Fprintf(w, `{"draft_order":{"id":%d,"invoice_url":"https://shop.example.com/invoices/%d","status":%q,"note":"Puppy Palentines Order for Biscuit"}}`, id, id, status)

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/products.json"):
		w.Write([]byte(`{"products":[
			{"id":1,"title":"Salmon Bites","handle":"salmon-bites","status":"active","variants":[{"id":11,"price":"12.50"}]},
			{"id":2,"title":"Organic Doggy Ice Cream","handle":"organic-doggy-ice-cream","status":"active","variants":[{"id":21,"price":"3.00"}]}
		]}`))

	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":"Not Found"}`))
	}
}

func (s *FakeShop) serveGraphQL(w http.ResponseWriter, body []byte) {
	var req struct {
		Variables map[string]json.RawMessage `json:"variables"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if input, ok := req.Variables["input"]; ok {
		s.carts = append(s.carts, input)
		fmt.Fprintf(w, `{"data":{"cartCreate":{"cart":{"id":"gid://shopify/Cart/%d","checkoutUrl":"https://shop.example.com/cart/c/%d"},"userErrors":[]}}}`, len(s.carts), len(s.carts))
		return
	}

	var handle string
	_ = json.Unmarshal(req.Variables["handle"], &handle)
	switch handle {
	case "salmon-bites":
		w.Write([]byte(`{"data":{"product":{"id":"gid://shopify/Product/1","title":"Salmon Bites","handle":"salmon-bites",
			"priceRange":{"minVariantPrice":{"amount":"12.50","currencyCode":"USD"}},
			"variants":{"edges":[{"node":{"id":"gid://shopify/ProductVariant/11","title":"Default Title",
				"price":{"amount":"12.50","currencyCode":"USD"},"availableForSale":true}}]}}}}`))
	default:
		w.Write([]byte(`{"data":{"product":null}}`))
	}
}

// NewTestServer wires the API the way cmd/api does, against db and shop.
func NewTestServer(t *testing.T, db *TestDB, shop *FakeShop) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	cfg := shopify.Config{
		StoreDomain:     strings.TrimPrefix(shop.Server.URL, "https://"),
		StorefrontToken: "storefront-token",
		AdminToken:      "admin-token",
		DomainPolicy:    shopify.ForceHost(CheckoutHost),
	}
	httpClient := shop.Server.Client()
	storefront := shopify.NewClient(cfg, httpClient, logger)
	admin := shopify.NewAdminClient(cfg, httpClient, logger)

	ledger := repository.NewLedgerRepository(db.Pool, logger)

	checkoutService := service.NewCheckoutService(storefront, ledger, logger)
	draftOrderService := service.NewDraftOrderService(admin, ledger, service.InvoiceSettings{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Recipient:   "orders@example.com",
	}, logger)
	productService := service.NewProductService(admin, storefront, catalog.NewParser(nil), logger)

	validate := handler.NewValidator()
	return router.New(router.Handlers{
		Checkout:   handler.NewCheckoutHandler(checkoutService, handler.CookieSettings{MaxAge: 3600}, validate, logger),
		DraftOrder: handler.NewDraftOrderHandler(draftOrderService, validate, logger),
		Product:    handler.NewProductHandler(productService, logger),
	}, AdminAPIKey, logger)
}
