package api

import (
	"context"
	"net/http"

	"storefront/internal/domain"
)

type OrderClient struct {
	c *Client
}

func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{c: c}
}

type createOrderRequest struct {
	Items []domain.CartLine `json:"items"`
}

// Create submits the cart lines as a single order.
func (oc *OrderClient) Create(ctx context.Context, lines []domain.CartLine) (*domain.Order, error) {
	var o domain.Order
	req := request{method: http.MethodPost, path: "orders/", body: createOrderRequest{Items: lines}}
	if err := oc.c.doJSON(ctx, "create order", req, &o); err != nil {
		return nil, err
	}
	normalizeOrder(&o)
	return &o, nil
}

func (oc *OrderClient) List(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := oc.c.doJSON(ctx, "list orders", request{method: http.MethodGet, path: "orders/"}, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		normalizeOrder(&orders[i])
	}
	return orders, nil
}

func (oc *OrderClient) Delete(ctx context.Context, id int64) error {
	_, err := oc.c.do(ctx, request{method: http.MethodDelete, path: idPath("orders/", id)})
	return err
}
