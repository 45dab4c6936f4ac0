package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is created server-side from a cart submission and never edited.
type Order struct {
	ID         int64           `json:"id"`
	Items      []OrderItem     `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	Customer   string          `json:"customer,omitempty"`
}

// SalesSummary aggregates a seller's catalog and sales.
type SalesSummary struct {
	TotalProducts  int             `json:"total_products"`
	TotalOrders    int             `json:"total_orders"`
	TotalItemsSold int             `json:"total_items_sold"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

type SaleItem struct {
	ProductID    int64           `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
}

// SaleOrder is the part of a customer order that concerns one seller.
type SaleOrder struct {
	OrderID   int64           `json:"order_id"`
	CreatedAt time.Time       `json:"created_at"`
	Customer  string          `json:"customer"`
	Items     []SaleItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
}
