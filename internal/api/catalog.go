package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type CatalogClient struct {
	c *Client
}

func NewCatalogClient(c *Client) *CatalogClient {
	return &CatalogClient{c: c}
}

// ListProducts returns the public catalog, filtered by search when non-empty.
func (cc *CatalogClient) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	var query url.Values
	if s := strings.TrimSpace(search); s != "" {
		query = url.Values{"search": {s}}
	}
	return cc.list(ctx, "list products", request{method: http.MethodGet, path: "products/", query: query})
}

func (cc *CatalogClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := cc.c.doJSON(ctx, "get product", request{method: http.MethodGet, path: idPath("products/", id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SellerProducts lists the products owned by the signed-in seller.
func (cc *CatalogClient) SellerProducts(ctx context.Context) ([]domain.Product, error) {
	return cc.list(ctx, "list seller products", request{method: http.MethodGet, path: "products/seller/"})
}

func (cc *CatalogClient) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	var p domain.Product
	req := request{method: http.MethodPost, path: "products/seller/", body: in}
	if err := cc.c.doJSON(ctx, "create product", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (cc *CatalogClient) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	var p domain.Product
	req := request{method: http.MethodPut, path: idPath("products/seller/", id), body: in}
	if err := cc.c.doJSON(ctx, "update product", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (cc *CatalogClient) DeleteProduct(ctx context.Context, id int64) error {
	_, err := cc.c.do(ctx, request{method: http.MethodDelete, path: idPath("products/seller/", id)})
	return err
}

func (cc *CatalogClient) SalesSummary(ctx context.Context) (*domain.SalesSummary, error) {
	var s domain.SalesSummary
	if err := cc.c.doJSON(ctx, "sales summary", request{method: http.MethodGet, path: "products/seller/sales-summary/"}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (cc *CatalogClient) SalesOrders(ctx context.Context) ([]domain.SaleOrder, error) {
	var orders []domain.SaleOrder
	if err := cc.c.doJSON(ctx, "sales orders", request{method: http.MethodGet, path: "products/seller/sales-orders/"}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (cc *CatalogClient) list(ctx context.Context, op string, req request) ([]domain.Product, error) {
	data, err := cc.c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	list, err := decodeProductList(op, data)
	if err != nil {
		return nil, err
	}
	return list.Products, nil
}

func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10) + "/"
}
