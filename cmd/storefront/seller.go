package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"storefront/internal/seller"
)

const sellerUsage = `usage: storefront seller <command> [flags]

commands:
  products                      list your products
  create [form flags]           create a product (starts from the saved draft)
  update [form flags] ID        update a product
  delete [-yes] ID              delete a product
  summary                       sales totals
  sales                         per-order sales breakdown
  draft [form flags]            save form values as the draft
  draft-show                    print the saved draft
  draft-clear                   discard the saved draft

form flags: -title -description -price -stock -category -brand -tags
            -discount -image-url -additional-images
`

func (c *cli) seller(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, sellerUsage)
		return nil
	}
	sub := map[string]command{
		"products":    c.sellerProducts,
		"create":      c.sellerCreate,
		"update":      c.sellerUpdate,
		"delete":      c.sellerDelete,
		"summary":     c.sellerSummary,
		"sales":       c.sellerSales,
		"draft":       c.sellerDraft,
		"draft-show":  c.sellerDraftShow,
		"draft-clear": c.sellerDraftClear,
	}
	cmd, ok := sub[args[0]]
	if !ok {
		fmt.Fprintf(c.out, "unknown seller command %q\n\n%s", args[0], sellerUsage)
		return userError("invalid command")
	}
	return cmd(ctx, args[1:])
}

func sellerErr(err error) error {
	return userError(seller.Message(err))
}

var formFields = []string{
	"title", "description", "price", "stock", "category",
	"brand", "tags", "discount", "image-url", "additional-images",
}

func formField(f *seller.Form, name string) *string {
	switch name {
	case "title":
		return &f.Title
	case "description":
		return &f.Description
	case "price":
		return &f.Price
	case "stock":
		return &f.Stock
	case "category":
		return &f.Category
	case "brand":
		return &f.Brand
	case "tags":
		return &f.Tags
	case "discount":
		return &f.Discount
	case "image-url":
		return &f.ImageURL
	case "additional-images":
		return &f.AdditionalImages
	}
	return nil
}

// formFlags binds the form fields to fs. The returned function copies only
// the flags actually given onto base.
func formFlags(fs *flag.FlagSet) func(base seller.Form) seller.Form {
	var given seller.Form
	for _, name := range formFields {
		fs.StringVar(formField(&given, name), name, "", name)
	}
	return func(base seller.Form) seller.Form {
		fs.Visit(func(fl *flag.Flag) {
			if dst := formField(&base, fl.Name); dst != nil {
				*dst = *formField(&given, fl.Name)
			}
		})
		return base
	}
}

func (c *cli) draftOrEmpty(ctx context.Context) (seller.Form, error) {
	f, ok, err := c.app.Seller.LoadDraft(ctx)
	if err != nil {
		return seller.Form{}, err
	}
	if !ok {
		return seller.EmptyForm(), nil
	}
	return f, nil
}

func (c *cli) sellerProducts(ctx context.Context, _ []string) error {
	products, err := c.app.Seller.Products(ctx)
	if err != nil {
		return sellerErr(err)
	}
	if len(products) == 0 {
		fmt.Fprintln(c.out, "You have no products yet.")
		return nil
	}
	printProducts(c.out, products)
	return nil
}

func (c *cli) sellerCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("seller create", c.out)
	apply := formFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	base, err := c.draftOrEmpty(ctx)
	if err != nil {
		return err
	}
	form := apply(base)
	p, err := c.app.Seller.CreateProduct(ctx, form)
	if err != nil {
		if saveErr := c.app.Seller.SaveDraft(ctx, form); saveErr != nil {
			fmt.Fprintf(c.out, "warning: draft not saved: %v\n", saveErr)
		}
		return sellerErr(err)
	}
	fmt.Fprintf(c.out, "Product #%d created.\n", p.ID)
	return nil
}

func (c *cli) sellerUpdate(ctx context.Context, args []string) error {
	fs := newFlagSet("seller update", c.out)
	apply := formFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs.Args())
	if err != nil {
		return err
	}
	current, err := c.app.Catalog.GetProduct(ctx, id)
	if err != nil {
		return remoteErr(err)
	}
	p, err := c.app.Seller.UpdateProduct(ctx, id, apply(seller.FormFromProduct(*current)))
	if err != nil {
		return sellerErr(err)
	}
	fmt.Fprintf(c.out, "Product #%d updated.\n", p.ID)
	return nil
}

func (c *cli) sellerDelete(ctx context.Context, args []string) error {
	fs := newFlagSet("seller delete", c.out)
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
	deleted, err := c.app.Seller.DeleteProduct(ctx, id, confirm)
	if err != nil {
		return sellerErr(err)
	}
	if deleted {
		fmt.Fprintf(c.out, "Product #%d deleted.\n", id)
	}
	return nil
}

func (c *cli) sellerSummary(ctx context.Context, _ []string) error {
	s, err := c.app.Seller.SalesSummary(ctx)
	if err != nil {
		return sellerErr(err)
	}
	fmt.Fprintf(c.out, "Products: %d\nOrders: %d\nItems sold: %d\nRevenue: $%s\n",
		s.TotalProducts, s.TotalOrders, s.TotalItemsSold, s.TotalRevenue.StringFixed(2))
	return nil
}

func (c *cli) sellerSales(ctx context.Context, _ []string) error {
	orders, err := c.app.Seller.SalesOrders(ctx)
	if err != nil {
		return sellerErr(err)
	}
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "No sales yet.")
		return nil
	}
	for _, o := range orders {
		fmt.Fprintf(c.out, "Order #%d  %s  %s  $%s\n", o.OrderID, o.CreatedAt.Format("2006-01-02 15:04"), o.Customer, o.Total.StringFixed(2))
		for _, it := range o.Items {
			fmt.Fprintf(c.out, "  %dx %s  $%s\n", it.Quantity, it.ProductTitle, it.Total.StringFixed(2))
		}
	}
	return nil
}

func (c *cli) sellerDraft(ctx context.Context, args []string) error {
	fs := newFlagSet("seller draft", c.out)
	apply := formFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	base, err := c.draftOrEmpty(ctx)
	if err != nil {
		return err
	}
	return c.app.Seller.SaveDraft(ctx, apply(base))
}

func (c *cli) sellerDraftShow(ctx context.Context, _ []string) error {
	f, ok, err := c.app.Seller.LoadDraft(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.out, "No draft saved.")
		return nil
	}
	printForm(c.out, f)
	return nil
}

func (c *cli) sellerDraftClear(ctx context.Context, _ []string) error {
	return c.app.Seller.ClearDraft(ctx)
}

func printForm(out io.Writer, f seller.Form) {
	fmt.Fprintf(out, "title: %s\ndescription: %s\nprice: %s\nstock: %s\ncategory: %s\nbrand: %s\ntags: %s\ndiscount: %s\nimage_url: %s\nadditional_images: %s\n",
		f.Title, f.Description, f.Price, f.Stock, f.Category, f.Brand, f.Tags, f.Discount, f.ImageURL, f.AdditionalImages)
}
