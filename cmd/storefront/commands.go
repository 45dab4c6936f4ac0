package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"storefront/internal/api"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

type command func(ctx context.Context, args []string) error

// userError carries a message that is printed as-is.
type userError string

func (e userError) Error() string { return string(e) }

func (c *cli) commands() map[string]command {
	return map[string]command{
		"login":        c.login,
		"logout":       c.logout,
		"register":     c.register,
		"products":     c.products,
		"product":      c.product,
		"add":          c.add,
		"inc":          c.changeQuantity(1),
		"dec":          c.changeQuantity(-1),
		"remove":       c.remove,
		"cart":         c.cart,
		"checkout":     c.checkout,
		"orders":       c.orders,
		"delete-order": c.deleteOrder,
		"seller":       c.seller,
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, userError("expected exactly one product or order id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, userError(fmt.Sprintf("invalid id %q", args[0]))
	}
	return id, nil
}

func remoteErr(err error) error {
	var ue userError
	if errors.As(err, &ue) {
		return err
	}
	return userError(api.Message(err))
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login", c.out)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return userError("username and password required")
	}
	_, next, err := c.app.Login(ctx, *username, *password)
	if err != nil {
		return remoteErr(err)
	}
	if next == "/seller/dashboard" {
		fmt.Fprintln(c.out, `Seller dashboard: run "storefront seller products".`)
	}
	return nil
}

func (c *cli) logout(ctx context.Context, _ []string) error {
	if !c.app.Session.Authenticated() {
		return userError("not signed in")
	}
	return c.app.Logout(ctx)
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register", c.out)
	in := api.RegisterInput{}
	fs.StringVar(&in.Username, "u", "", "username")
	fs.StringVar(&in.Password, "p", "", "password")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.UserType, "type", "", "customer or seller")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.app.Register(ctx, in); err != nil {
		return remoteErr(err)
	}
	fmt.Fprintln(c.out, "Registration successful. Please login.")
	return nil
}

func (c *cli) products(ctx context.Context, args []string) error {
	fs := newFlagSet("products", c.out)
	search := fs.String("search", "", "filter by title or description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	products, err := c.app.Catalog.ListProducts(ctx, *search)
	if err != nil {
		return remoteErr(err)
	}
	if len(products) == 0 {
		fmt.Fprintln(c.out, "No products found.")
		return nil
	}
	printProducts(c.out, products)
	return nil
}

func (c *cli) product(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	p, err := c.app.Catalog.GetProduct(ctx, id)
	if err != nil {
		return remoteErr(err)
	}
	fmt.Fprintf(c.out, "%s\n$%s  stock %d\n", p.Title, p.Price.StringFixed(2), p.Stock)
	if p.Description != "" {
		fmt.Fprintln(c.out, p.Description)
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	cart, err := c.app.AddToCart(ctx, id)
	if err != nil {
		return remoteErr(err)
	}
	i := cart.Find(id)
	if i < 0 {
		return userError("Unexpected response from server.")
	}
	line := cart.Lines[i]
	fmt.Fprintf(c.out, "Added %s to cart (quantity %d).\n", line.Title, line.Quantity)
	return nil
}

func (c *cli) changeQuantity(delta int) command {
	return func(ctx context.Context, args []string) error {
		id, err := idArg(args)
		if err != nil {
			return err
		}
		cart, err := c.app.Cart.UpdateQuantity(ctx, id, delta)
		if err != nil {
			return err
		}
		printCart(c.out, cart)
		return nil
	}
}

func (c *cli) remove(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	cart, err := c.app.Cart.Remove(ctx, id)
	if err != nil {
		return err
	}
	printCart(c.out, cart)
	return nil
}

func (c *cli) cart(ctx context.Context, _ []string) error {
	cart, err := c.app.Cart.Load(ctx)
	if err != nil {
		return err
	}
	printCart(c.out, cart)
	return nil
}

func (c *cli) checkout(ctx context.Context, _ []string) error {
	order, err := c.app.Checkout.PlaceOrder(ctx)
	if err != nil {
		if order == nil {
			return userError(checkout.Message(err))
		}
		fmt.Fprintf(c.out, "warning: %v\n", err)
	}
	fmt.Fprintf(c.out, "Order #%d placed: %d items, total $%s.\n", order.ID, order.TotalItems, order.TotalPrice.StringFixed(2))
	return nil
}

func (c *cli) orders(ctx context.Context, _ []string) error {
	orders, err := c.app.Checkout.Orders(ctx)
	if err != nil {
		return userError(checkout.Message(err))
	}
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "You have no orders yet.")
		return nil
	}
	for _, o := range orders {
		fmt.Fprintf(c.out, "Order #%d  %s  %d items  $%s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.TotalItems, o.TotalPrice.StringFixed(2))
		for _, it := range o.Items {
			fmt.Fprintf(c.out, "  %dx %s  $%s\n", it.Quantity, it.Product.Title, it.LineTotal.StringFixed(2))
		}
	}
	return nil
}

func (c *cli) deleteOrder(ctx context.Context, args []string) error {
	fs := newFlagSet("delete-order", c.out)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs.Args())
	if err != nil {
		return err
	}
	confirm := c.confirm
	if *yes {
		confirm = func(string) bool { return true }
	}
	deleted, err := c.app.Checkout.DeleteOrder(ctx, id, confirm)
	if err != nil {
		return userError(checkout.Message(err))
	}
	if deleted {
		fmt.Fprintf(c.out, "Order #%d deleted.\n", id)
	}
	return nil
}

func printProducts(out io.Writer, products []domain.Product) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%d\n", p.ID, p.Title, p.Price.StringFixed(2), p.Stock)
	}
	tw.Flush()
}

func printCart(out io.Writer, cart domain.Cart) {
	if cart.Empty() {
		fmt.Fprintln(out, "Your cart is empty")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tSUBTOTAL")
	for _, l := range cart.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t$%s\n", l.ID, l.Title, l.Quantity, l.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t$%s\n", cart.Total().StringFixed(2))
	tw.Flush()
}

func trimLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
