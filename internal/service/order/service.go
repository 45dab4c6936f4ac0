package order

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

// NoValidItems is reported under "items" when nothing in a submission could
// be turned into an order line.
const NoValidItems = "No valid items were provided for this order."

const fallbackStock = 100

type orderStore interface {
	Create(ctx context.Context, userID int64, items []orderrepo.NewItem) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	Owner(ctx context.Context, orderID int64) (int64, error)
	Delete(ctx context.Context, orderID int64) error
	SalesSummary(ctx context.Context, sellerID int64) (*domain.SalesSummary, error)
	SalesOrders(ctx context.Context, sellerID int64) ([]domain.SaleOrder, error)
}

type productStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, sellerID int64, in domain.ProductInput) (*domain.Product, error)
}

type Service struct {
	orders   orderStore
	products productStore
	logger   *log.Logger
}

func New(orders orderStore, products productStore, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, products: products, logger: logger}
}

// ItemInput is one submitted line. Clients send cart lines, so the product
// id may arrive as product, product_id or id.
type ItemInput struct {
	Product     int64            `json:"product"`
	ProductID   int64            `json:"product_id"`
	ID          int64            `json:"id"`
	Quantity    *int             `json:"quantity"`
	Title       *string          `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url"`
	Thumbnail   string           `json:"thumbnail"`
	Stock       *int             `json:"stock"`
}

func (in ItemInput) productID() int64 {
	for _, id := range []int64{in.Product, in.ProductID, in.ID} {
		if id != 0 {
			return id
		}
	}
	return 0
}

// Create places an order for userID. Items naming an unknown product are
// turned into a new product owned by userID when they carry a title and a
// price, and skipped otherwise.
func (s *Service) Create(ctx context.Context, userID int64, items []ItemInput) (*domain.Order, error) {
	lines := make([]orderrepo.NewItem, 0, len(items))
	for _, in := range items {
		qty := 1
		if in.Quantity != nil {
			qty = *in.Quantity
		}
		if qty < 1 {
			continue
		}
		p, err := s.resolve(ctx, userID, in)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		lines = append(lines, orderrepo.NewItem{ProductID: p.ID, Quantity: qty, Price: p.Price})
	}
	if len(lines) == 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{"items": NoValidItems}}
	}
	return s.orders.Create(ctx, userID, lines)
}

func (s *Service) resolve(ctx context.Context, userID int64, in ItemInput) (*domain.Product, error) {
	if id := in.productID(); id != 0 {
		p, err := s.products.GetByID(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Price == nil || in.Price.IsNegative() {
		return nil, nil
	}
	stock := fallbackStock
	if in.Stock != nil && *in.Stock >= 0 {
		stock = *in.Stock
	}
	image := in.ImageURL
	if image == "" {
		image = in.Thumbnail
	}
	p, err := s.products.Create(ctx, userID, domain.ProductInput{
		Title:       strings.TrimSpace(*in.Title),
		Description: in.Description,
		Price:       *in.Price,
		Stock:       stock,
		ImageURL:    image,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order service: created product id=%d from order item title=%q", p.ID, p.Title)
	return p, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Delete removes an order placed by userID. Orders of other users are
// reported as not found.
func (s *Service) Delete(ctx context.Context, userID, orderID int64) error {
	owner, err := s.orders.Owner(ctx, orderID)
	if err != nil {
		return err
	}
	if owner != userID {
		return domain.ErrNotFound
	}
	return s.orders.Delete(ctx, orderID)
}

func (s *Service) SalesSummary(ctx context.Context, sellerID int64) (*domain.SalesSummary, error) {
	return s.orders.SalesSummary(ctx, sellerID)
}

func (s *Service) SalesOrders(ctx context.Context, sellerID int64) ([]domain.SaleOrder, error) {
	return s.orders.SalesOrders(ctx, sellerID)
}
