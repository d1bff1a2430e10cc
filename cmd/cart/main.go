// Command cart manages a shopper's cart from the terminal and starts checkout
// through the storefront server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/pricing"
	"storefront/internal/promotion"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const usage = `Usage: cart [flags] <command> [args]

Commands:
  show                      list the cart with effective prices
  add <handle> [flags]      add a product or set its quantity
  remove <product-id>       remove a line (--title selects a variant line)
  reset                     empty the cart
  checkout [flags]          create a checkout and print its URL

Flags:
`

// options are the flags shared by every command.
type options struct {
	dir       string
	redisAddr string
	shopper   string
	ttl       time.Duration
	serverURL string
	rulesPath string
	logLevel  string
}

// app is the wired cart for one invocation.
type app struct {
	store  *cart.Store
	client *cart.ServerClient
	engine *pricing.Engine
	out    io.Writer
	logger zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("cart", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVar(&opts.dir, "dir", defaultDir(), "directory holding the cart file")
	fs.StringVar(&opts.redisAddr, "redis", os.Getenv("CART_REDIS_ADDR"), "keep the cart in Redis at this address instead of a file")
	fs.StringVar(&opts.shopper, "shopper", os.Getenv("CART_SHOPPER"), "shopper id used in the Redis key")
	fs.DurationVar(&opts.ttl, "ttl", 30*24*time.Hour, "expiry of the Redis cart")
	fs.StringVar(&opts.serverURL, "server", envOr("STOREFRONT_URL", "http://localhost:8080"), "storefront server base URL")
	fs.StringVar(&opts.rulesPath, "rules", os.Getenv("PROMOTION_RULES_PATH"), "promotion rules document")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	logger := config.NewLogger(config.LoggerConfig{Level: opts.logLevel, Format: "console", Output: stderr})

	a, cleanup, err := newApp(ctx, opts, stdout, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "show":
		return a.show()
	case "add":
		return a.add(ctx, rest, stderr)
	case "remove":
		return a.remove(ctx, rest, stderr)
	case "reset":
		return a.reset(ctx)
	case "checkout":
		return a.checkout(ctx, rest, stderr)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func newApp(ctx context.Context, opts options, out io.Writer, logger zerolog.Logger) (*app, func(), error) {
	engine := pricing.Default()
	if opts.rulesPath != "" {
		rules, err := promotion.NewFileLoader(logger).Load(ctx, opts.rulesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load promotion rules: %w", err)
		}
		engine = pricing.NewEngine(rules.BundleUnitPrice)
	}

	var storage cart.Storage
	cleanup := func() {}
	if opts.redisAddr != "" {
		client := cart.NewRedisClient(opts.redisAddr)
		storage = cart.NewRedisStorage(client, opts.shopper, opts.ttl)
		cleanup = func() { client.Close() }
		logger.Debug().Str("redis", opts.redisAddr).Msg("using redis cart storage")
	} else {
		fileStorage := cart.NewFileStorage(opts.dir)
		storage = fileStorage
		logger.Debug().Str("path", fileStorage.Path()).Msg("using file cart storage")
	}

	store := cart.NewStore(storage, engine, logger)
	store.Load(ctx)

	return &app{
		store:  store,
		client: cart.NewServerClient(opts.serverURL, &http.Client{Timeout: 30 * time.Second}, logger),
		engine: engine,
		out:    out,
		logger: logger,
	}, cleanup, nil
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".daydreamers")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
