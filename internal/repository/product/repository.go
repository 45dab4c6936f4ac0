package product

import (
	"context"

	"storefront/internal/domain"
)

// Filter narrows a listing. Zero values mean no restriction.
type Filter struct {
	Search   string
	Ordering string
	SellerID int64
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, sellerID int64, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}
