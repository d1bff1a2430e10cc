package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Shopify   ShopifyConfig
	Checkout  CheckoutConfig
	Invoice   InvoiceConfig
	Promotion PromotionConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	S3        S3Config
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// ShopifyConfig holds the commerce platform coordinates.
type ShopifyConfig struct {
	StoreDomain     string
	StorefrontToken string
	AdminToken      string
	APIVersion      string
}

// CheckoutConfig controls checkout URLs and the cart cookie.
type CheckoutConfig struct {
	// DomainPolicy is "as_provided" or the host every checkout URL is
	// rewritten to.
	DomainPolicy string
	CookieName   string
	CookieMaxAge time.Duration
	CookieSecure bool
}

// InvoiceConfig controls draft-order invoice delivery.
type InvoiceConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Recipient   string
}

// PromotionConfig locates the promotion rules document. An empty path uses
// the built-in rules.
type PromotionConfig struct {
	RulesPath string
}

// DatabaseConfig holds database-related configuration. The order ledger is
// only written when Enabled.
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
	Output io.Writer
}

// AuthConfig holds authentication configuration. Admin routes are not
// mounted without an AdminAPIKey.
type AuthConfig struct {
	AdminAPIKey string
}

// S3Config holds AWS S3 configuration for promotion rules.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "promotions/")
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Shopify: ShopifyConfig{
			StoreDomain:     getEnv("SHOPIFY_STORE_DOMAIN", ""),
			StorefrontToken: getEnv("SHOPIFY_STOREFRONT_ACCESS_TOKEN", ""),
			AdminToken:      getEnv("SHOPIFY_ADMIN_ACCESS_TOKEN", ""),
			APIVersion:      getEnv("SHOPIFY_API_VERSION", "2024-01"),
		},
		Checkout: CheckoutConfig{
			DomainPolicy: getEnv("CHECKOUT_DOMAIN_POLICY", "as_provided"),
			CookieName:   getEnv("CART_COOKIE_NAME", "cartId"),
			CookieMaxAge: getEnvAsDuration("CART_COOKIE_MAX_AGE", 30*24*time.Hour),
			CookieSecure: getEnvAsBool("CART_COOKIE_SECURE", true),
		},
		Invoice: InvoiceConfig{
			MaxAttempts: getEnvAsInt("INVOICE_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvAsDuration("INVOICE_BASE_DELAY", 500*time.Millisecond),
			Recipient:   getEnv("INVOICE_RECIPIENT", "orders@daydreamersnyc.com"),
		},
		Promotion: PromotionConfig{
			RulesPath: getEnv("PROMOTION_RULES_PATH", ""),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "promotions/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Shopify.StoreDomain == "" {
		return fmt.Errorf("SHOPIFY_STORE_DOMAIN is required")
	}

	if c.Shopify.StorefrontToken == "" {
		return fmt.Errorf("SHOPIFY_STOREFRONT_ACCESS_TOKEN is required")
	}

	if c.Shopify.AdminToken == "" {
		return fmt.Errorf("SHOPIFY_ADMIN_ACCESS_TOKEN is required")
	}

	if c.Checkout.CookieName == "" {
		return fmt.Errorf("cart cookie name is required")
	}

	if c.Invoice.MaxAttempts < 1 {
		return fmt.Errorf("invoice max attempts must be at least 1")
	}

	if c.Invoice.BaseDelay < 0 {
		return fmt.Errorf("invoice base delay must not be negative")
	}

	if c.Invoice.Recipient == "" {
		return fmt.Errorf("invoice recipient is required")
	}

	if c.Database.Enabled {
		if err := c.Database.validate(); err != nil {
			return err
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
		if c.Promotion.RulesPath == "" {
			return fmt.Errorf("promotion rules path is required when S3 is enabled")
		}
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration parses values like "500ms" or "720h".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
