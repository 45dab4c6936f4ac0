package order

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// NewItem is one resolved order line. Price is captured at order time.
type NewItem struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

type Repository interface {
	Create(ctx context.Context, userID int64, items []NewItem) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	// Owner returns the id of the user who placed the order.
	Owner(ctx context.Context, orderID int64) (int64, error)
	Delete(ctx context.Context, orderID int64) error
	SalesSummary(ctx context.Context, sellerID int64) (*domain.SalesSummary, error)
	SalesOrders(ctx context.Context, sellerID int64) ([]domain.SaleOrder, error)
}
