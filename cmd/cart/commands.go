package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/model"

	"github.com/spf13/pflag"
)

func (a *app) show() error {
	lines, ok := a.store.Items()
	if !ok {
		return cart.ErrCartLoading
	}
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tID\tQTY\tUNIT\tTOTAL")
	for _, l := range lines {
		unit := a.engine.EffectiveUnitPrice(lines, l)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s %s\t%s %s\n",
			l.Title,
			l.ProductID,
			l.Quantity,
			unit.StringFixed(2), l.Currency(),
			a.engine.LineTotal(lines, l).StringFixed(2), l.Currency(),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nTotal: %s %s\n", a.store.Total().StringFixed(2), lines[0].Currency())
	return nil
}

func (a *app) add(ctx context.Context, args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	variant := fs.String("variant", "", "variant id of a variant-bearing product")
	title := fs.String("title", "", "pick a product by title when a handle holds several")
	qty := fs.IntP("qty", "q", 1, "quantity to set (0 removes the line)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: cart add <handle> [--variant id] [--title name] [--qty n]")
	}

	products, err := a.client.Products(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", fs.Arg(0), err)
	}
	product, err := pickProduct(products, *title)
	if err != nil {
		return err
	}

	line, err := product.LineItem(*variant, *qty)
	if err != nil {
		return err
	}
	if err := a.store.AddOrUpdate(ctx, line); err != nil {
		return err
	}

	a.logger.Info().Str("product_id", line.ProductID).Int("quantity", line.Quantity).Msg("cart updated")
	return a.show()
}

func (a *app) remove(ctx context.Context, args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("remove", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "", "title of a variant-level line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: cart remove <product-id> [--title name]")
	}

	if err := a.store.Remove(ctx, fs.Arg(0), *title); err != nil {
		return err
	}
	return a.show()
}

func (a *app) reset(ctx context.Context) error {
	if err := a.store.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Cart cleared.")
	return nil
}

func (a *app) checkout(ctx context.Context, args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("checkout", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	noShipping := fs.Bool("no-shipping", false, "the order is not shipped")
	address := model.ShippingAddress{}
	fs.StringVar(&address.Address1, "address1", "", "street address")
	fs.StringVar(&address.City, "city", "", "city")
	fs.StringVar(&address.Province, "province", "", "state or province")
	fs.StringVar(&address.Zip, "zip", "", "postal code")
	fs.StringVar(&address.Country, "country", "", "country code (default US)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := cart.CheckoutOptions{}
	if *noShipping {
		requiresShipping := false
		opts.RequiresShipping = &requiresShipping
	} else if address.Address1 != "" {
		opts.ShippingAddress = &address
	}

	result, err := a.client.Checkout(ctx, a.store, opts)
	if errors.Is(err, cart.ErrEmptyCart) {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Checkout: %s\n", result.CheckoutURL)
	if result.CartID != "" {
		fmt.Fprintf(a.out, "Cart ID:  %s\n", result.CartID)
	}
	return nil
}

// pickProduct chooses among the products behind one handle.
func pickProduct(products []catalog.Product, title string) (catalog.Product, error) {
	if len(products) == 0 {
		return catalog.Product{}, errors.New("no products found")
	}
	if title == "" {
		if len(products) == 1 {
			return products[0], nil
		}
		return catalog.Product{}, fmt.Errorf("handle holds several products, pick one with --title: %s", titles(products))
	}
	for _, p := range products {
		if strings.EqualFold(p.Title, title) {
			return p, nil
		}
	}
	return catalog.Product{}, fmt.Errorf("no product titled %q, choose from: %s", title, titles(products))
}

func titles(products []catalog.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Title)
	}
	return strings.Join(names, ", ")
}
