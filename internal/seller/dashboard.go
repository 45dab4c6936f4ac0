// Package seller implements the seller dashboard: product management, sales
// reporting and the in-progress product draft.
package seller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/session"
	"storefront/internal/storage"
)

// DraftKey is where the unsaved new-product form is kept.
const DraftKey = "productFormDraft"

const DeletePrompt = "Are you sure you want to delete this product?"

type catalogClient interface {
	SellerProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SalesSummary(ctx context.Context) (*domain.SalesSummary, error)
	SalesOrders(ctx context.Context) ([]domain.SaleOrder, error)
}

type sellerGate interface {
	RequireSeller() error
}

type Dashboard struct {
	catalog catalogClient
	gate    sellerGate
	storage storage.Storage
	logger  *log.Logger
}

func New(catalog catalogClient, gate sellerGate, st storage.Storage, logger *log.Logger) *Dashboard {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Dashboard{catalog: catalog, gate: gate, storage: st, logger: logger}
}

func (d *Dashboard) Products(ctx context.Context) ([]domain.Product, error) {
	if err := d.gate.RequireSeller(); err != nil {
		return nil, err
	}
	return d.catalog.SellerProducts(ctx)
}

// CreateProduct validates f locally before sending it. A created product
// clears the saved draft.
func (d *Dashboard) CreateProduct(ctx context.Context, f Form) (*domain.Product, error) {
	if err := d.gate.RequireSeller(); err != nil {
		return nil, err
	}
	in, err := f.Input()
	if err != nil {
		return nil, err
	}
	p, err := d.catalog.CreateProduct(ctx, in)
	if err != nil {
		d.logger.Printf("seller: create product title=%q error=%v", in.Title, err)
		return nil, err
	}
	if err := d.ClearDraft(ctx); err != nil {
		d.logger.Printf("seller: clear draft error=%v", err)
	}
	return p, nil
}

func (d *Dashboard) UpdateProduct(ctx context.Context, id int64, f Form) (*domain.Product, error) {
	if err := d.gate.RequireSeller(); err != nil {
		return nil, err
	}
	in, err := f.Input()
	if err != nil {
		return nil, err
	}
	p, err := d.catalog.UpdateProduct(ctx, id, in)
	if err != nil {
		d.logger.Printf("seller: update product id=%d error=%v", id, err)
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes the product when confirm approves DeletePrompt.
func (d *Dashboard) DeleteProduct(ctx context.Context, id int64, confirm func(prompt string) bool) (bool, error) {
	if err := d.gate.RequireSeller(); err != nil {
		return false, err
	}
	if confirm == nil || !confirm(DeletePrompt) {
		return false, nil
	}
	if err := d.catalog.DeleteProduct(ctx, id); err != nil {
		d.logger.Printf("seller: delete product id=%d error=%v", id, err)
		return false, err
	}
	return true, nil
}

func (d *Dashboard) SalesSummary(ctx context.Context) (*domain.SalesSummary, error) {
	if err := d.gate.RequireSeller(); err != nil {
		return nil, err
	}
	return d.catalog.SalesSummary(ctx)
}

func (d *Dashboard) SalesOrders(ctx context.Context) ([]domain.SaleOrder, error) {
	if err := d.gate.RequireSeller(); err != nil {
		return nil, err
	}
	return d.catalog.SalesOrders(ctx)
}

func (d *Dashboard) SaveDraft(ctx context.Context, f Form) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return d.storage.Set(ctx, DraftKey, string(raw))
}

// LoadDraft returns the saved draft. ok is false when there is none or it
// cannot be parsed.
func (d *Dashboard) LoadDraft(ctx context.Context) (f Form, ok bool, err error) {
	raw, err := d.storage.Get(ctx, DraftKey)
	if errors.Is(err, domain.ErrNotFound) {
		return Form{}, false, nil
	}
	if err != nil {
		return Form{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		d.logger.Printf("seller: ignore unparsable draft err=%v", err)
		return Form{}, false, nil
	}
	return f, true, nil
}

func (d *Dashboard) ClearDraft(ctx context.Context) error {
	return d.storage.Delete(ctx, DraftKey)
}

// Message renders a dashboard failure for the user.
func Message(err error) string {
	var redirect *session.RedirectError
	var invalid *domain.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &redirect):
		return redirect.Reason
	case errors.As(err, &invalid):
		return invalid.Error()
	default:
		return api.Message(err)
	}
}
