package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/session"
	"storefront/internal/storefront"
)

const usage = `usage: storefront <command> [flags] [args]

commands:
  login -u NAME -p PASSWORD     sign in
  logout                        sign out and empty the cart
  register -u NAME -p PASSWORD [-email E] [-type customer|seller]
  products [-search TERM]       list the catalog
  product ID                    show one product
  add ID                        add a product to the cart
  inc ID | dec ID | remove ID   change a cart line
  cart                          show the cart
  checkout                      place an order from the cart
  orders                        list your orders
  delete-order [-yes] ID        delete one of your orders
  seller <sub> ...              seller dashboard (run "storefront seller" for help)
`

func main() {
	cfg := config.FromEnv()
	logger := log.New(io.Discard, "", 0)
	if os.Getenv("STOREFRONT_DEBUG") != "" {
		logger = log.New(os.Stderr, "[storefront] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := storefront.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}

	code := run(ctx, app, os.Args[1:], os.Stdout, os.Stdin)
	app.Close()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, app *storefront.App, args []string, out io.Writer, in io.Reader) int {
	c := &cli{app: app, out: out, in: bufio.NewReader(in)}
	unsubscribe := app.Session.Subscribe(c.onSessionEvent)
	defer unsubscribe()

	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return 2
	}
	cmd, ok := c.commands()[args[0]]
	if !ok {
		fmt.Fprintf(out, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err := cmd(ctx, args[1:]); err != nil {
		fmt.Fprintln(out, err)
		return 1
	}
	return 0
}

const loginPath = "/login"

type cli struct {
	app *storefront.App
	out io.Writer
	in  *bufio.Reader
}

func (c *cli) onSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventExpired:
		fmt.Fprintln(c.out, "Session expired. Please login again")
		fmt.Fprintf(c.out, "Next: %s (run \"storefront login\")\n", loginPath)
	case session.EventLogout:
		fmt.Fprintf(c.out, "Signed out %s.\n", ev.Session.Username)
	case session.EventLogin:
		fmt.Fprintf(c.out, "Signed in as %s (%s).\n", ev.Session.Username, ev.Session.Role)
	}
}

// confirm asks prompt on the terminal; anything but y/yes declines.
func (c *cli) confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, _ := c.in.ReadString('\n')
	switch line = trimLower(line); line {
	case "y", "yes":
		return true
	default:
		return false
	}
}
