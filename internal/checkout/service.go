// Package checkout turns the local cart into a remote order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/api"
	"storefront/internal/domain"
)

var (
	ErrNotAuthenticated = errors.New("checkout: not authenticated")
	ErrEmptyCart        = errors.New("checkout: cart is empty")
)

// DeletePrompt is shown to the confirmer before an order is deleted.
const DeletePrompt = "Remove this order? This cannot be undone."

// Confirmer asks the user to approve a destructive action.
type Confirmer func(prompt string) bool

type cartStore interface {
	Load(ctx context.Context) (domain.Cart, error)
	Clear(ctx context.Context) error
}

type orderClient interface {
	Create(ctx context.Context, lines []domain.CartLine) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type authState interface {
	Authenticated() bool
}

type Service struct {
	cart    cartStore
	orders  orderClient
	session authState
	logger  *log.Logger
}

func New(cart cartStore, orders orderClient, session authState, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{cart: cart, orders: orders, session: session, logger: logger}
}

// PlaceOrder submits every cart line as one order. The cart is cleared only
// after the server accepted the order; on any failure it is left as it was.
func (s *Service) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	if !s.session.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	c, err := s.cart.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	order, err := s.orders.Create(ctx, c.Lines)
	if err != nil {
		s.logger.Printf("checkout: place order lines=%d error=%v", len(c.Lines), err)
		return nil, err
	}
	s.logger.Printf("checkout: placed order id=%d lines=%d items=%d", order.ID, len(c.Lines), c.ItemCount())

	if err := s.cart.Clear(ctx); err != nil {
		return order, fmt.Errorf("order %d placed but cart not cleared: %w", order.ID, err)
	}
	return order, nil
}

func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	if !s.session.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.orders.List(ctx)
}

// DeleteOrder removes an order once confirm approves it. It reports whether a
// delete request was sent and succeeded.
func (s *Service) DeleteOrder(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	if !s.session.Authenticated() {
		return false, ErrNotAuthenticated
	}
	if confirm == nil || !confirm(DeletePrompt) {
		return false, nil
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		s.logger.Printf("checkout: delete order id=%d error=%v", id, err)
		return false, err
	}
	return true, nil
}

// Message renders a checkout failure for the user.
func Message(err error) string {
	var apiErr *api.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return "You must login first to place an order"
	case errors.Is(err, ErrEmptyCart):
		return "Your cart is empty"
	case errors.Is(err, api.ErrUnreachable), errors.Is(err, api.ErrUnauthorized):
		return api.Message(err)
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "Failed to place order. Make sure you are logged in."
	}
}
