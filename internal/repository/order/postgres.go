package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Create writes the order and its items in one transaction.
func (r *postgresRepo) Create(ctx context.Context, userID int64, items []NewItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order repo: no items")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var orderID int64
	if err := tx.QueryRow(ctx, `INSERT INTO orders (user_id) VALUES ($1) RETURNING id`, userID).Scan(&orderID); err != nil {
		r.logger.Printf("order repo: create user_id=%d error=%v", userID, err)
		return nil, err
	}
	for _, it := range items {
		const q = `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4::numeric)`
		if _, err := tx.Exec(ctx, q, orderID, it.ProductID, it.Quantity, it.Price.String()); err != nil {
			r.logger.Printf("order repo: add item order_id=%d product_id=%d error=%v", orderID, it.ProductID, err)
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%d user_id=%d items=%d", orderID, userID, len(items))

	orders, err := r.load(ctx, `o.id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return &orders[0], nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := r.load(ctx, `o.user_id = $1`, userID)
	if err != nil {
		r.logger.Printf("order repo: list user_id=%d error=%v", userID, err)
		return nil, err
	}
	r.logger.Printf("order repo: list user_id=%d count=%d", userID, len(orders))
	return orders, nil
}

func (r *postgresRepo) Owner(ctx context.Context, orderID int64) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM orders WHERE id = $1`, orderID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return userID, err
}

func (r *postgresRepo) Delete(ctx context.Context, orderID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		r.logger.Printf("order repo: delete id=%d error=%v", orderID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: deleted id=%d", orderID)
	return nil
}

// load returns orders matching cond with their items and products, newest
// first. cond must reference the alias o and a single parameter $1.
func (r *postgresRepo) load(ctx context.Context, cond string, arg any) ([]domain.Order, error) {
	q := `
SELECT o.id, o.created_at, u.username, oi.quantity, oi.price::text,
       p.id, COALESCE(p.seller_id, 0), p.title, p.description, p.price::text, p.stock, p.discount::text,
       p.image_url, p.thumbnail, p.rating::text, p.reviews_count, p.category, p.brand, p.tags,
       p.additional_images, p.created_at
FROM orders o
JOIN users u ON u.id = o.user_id
JOIN order_items oi ON oi.order_id = o.id
JOIN products p ON p.id = oi.product_id
WHERE ` + cond + `
ORDER BY o.created_at DESC, o.id DESC, oi.id ASC`
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			orderID   int64
			createdAt time.Time
			customer  string
			qty       int
			unitText  string
			p         domain.Product
			priceText string
			discText  string
			rateText  string
		)
		if err := rows.Scan(&orderID, &createdAt, &customer, &qty, &unitText,
			&p.ID, &p.Seller, &p.Title, &p.Description, &priceText, &p.Stock, &discText,
			&p.ImageURL, &p.Thumbnail, &rateText, &p.ReviewsCount, &p.Category, &p.Brand, &p.Tags,
			&p.AdditionalImages, &p.CreatedAt); err != nil {
			return nil, err
		}
		unit, err := decimal.NewFromString(unitText)
		if err != nil {
			return nil, fmt.Errorf("decode item price order_id=%d: %w", orderID, err)
		}
		if p.Price, err = decimal.NewFromString(priceText); err != nil {
			return nil, err
		}
		if p.Discount, err = decimal.NewFromString(discText); err != nil {
			return nil, err
		}
		if p.Rating, err = decimal.NewFromString(rateText); err != nil {
			return nil, err
		}

		i, ok := index[orderID]
		if !ok {
			orders = append(orders, domain.Order{ID: orderID, CreatedAt: createdAt, Customer: customer, TotalPrice: decimal.Zero})
			i = len(orders) - 1
			index[orderID] = i
		}
		o := &orders[i]
		line := unit.Mul(decimal.NewFromInt(int64(qty)))
		o.Items = append(o.Items, domain.OrderItem{Product: p, Quantity: qty, LineTotal: line})
		o.TotalItems += qty
		o.TotalPrice = o.TotalPrice.Add(line)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) SalesSummary(ctx context.Context, sellerID int64) (*domain.SalesSummary, error) {
	const q = `
SELECT
    (SELECT count(*) FROM products WHERE seller_id = $1),
    count(DISTINCT oi.order_id),
    COALESCE(sum(oi.quantity), 0),
    COALESCE(sum(oi.quantity * oi.price), 0)::text
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE p.seller_id = $1
`
	var s domain.SalesSummary
	var revenue string
	if err := r.pool.QueryRow(ctx, q, sellerID).Scan(&s.TotalProducts, &s.TotalOrders, &s.TotalItemsSold, &revenue); err != nil {
		r.logger.Printf("order repo: sales summary seller_id=%d error=%v", sellerID, err)
		return nil, err
	}
	var err error
	if s.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) SalesOrders(ctx context.Context, sellerID int64) ([]domain.SaleOrder, error) {
	const q = `
SELECT o.id, o.created_at, u.username, p.id, p.title, oi.quantity, oi.price::text
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN users u ON u.id = o.user_id
JOIN products p ON p.id = oi.product_id
WHERE p.seller_id = $1
ORDER BY o.created_at DESC, o.id DESC, oi.id ASC
`
	rows, err := r.pool.Query(ctx, q, sellerID)
	if err != nil {
		r.logger.Printf("order repo: sales orders seller_id=%d error=%v", sellerID, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.SaleOrder{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			orderID   int64
			createdAt time.Time
			customer  string
			item      domain.SaleItem
			priceText string
		)
		if err := rows.Scan(&orderID, &createdAt, &customer, &item.ProductID, &item.ProductTitle, &item.Quantity, &priceText); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(priceText); err != nil {
			return nil, err
		}
		item.Total = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))

		i, ok := index[orderID]
		if !ok {
			result = append(result, domain.SaleOrder{OrderID: orderID, CreatedAt: createdAt, Customer: customer, Total: decimal.Zero})
			i = len(result) - 1
			index[orderID] = i
		}
		result[i].Items = append(result[i].Items, item)
		result[i].Total = result[i].Total.Add(item.Total)
	}
	return result, rows.Err()
}
