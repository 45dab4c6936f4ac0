package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

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

const productColumns = `id, COALESCE(seller_id, 0), title, description, price::text, stock, discount::text,
       image_url, thumbnail, rating::text, reviews_count, category, brand, tags, additional_images, created_at`

var orderings = map[string]string{
	"price":  "price ASC, id ASC",
	"-price": "price DESC, id ASC",
	"title":  "title ASC, id ASC",
	"-title": "title DESC, id ASC",
}

// OrderClause maps a public ordering parameter to SQL. Unknown values fall
// back to newest first.
func OrderClause(ordering string) string {
	if clause, ok := orderings[strings.TrimSpace(ordering)]; ok {
		return clause
	}
	return "created_at DESC, id DESC"
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if f.SellerID != 0 {
		args = append(args, f.SellerID)
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	q := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + OrderClause(f.Ordering)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list search=%q seller_id=%d error=%v", f.Search, f.SellerID, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list search=%q seller_id=%d count=%d", f.Search, f.SellerID, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: get id=%d not found", id)
			return nil, err
		}
		r.logger.Printf("product repo: get id=%d error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, sellerID int64, in domain.ProductInput) (*domain.Product, error) {
	q := `
INSERT INTO products (seller_id, title, description, price, stock, discount, image_url, category, brand, tags, additional_images)
VALUES (NULLIF($1::bigint, 0), $2, $3, $4::numeric, $5, $6::numeric, $7, $8, $9, $10, COALESCE(NULLIF($11, ''), '[]'))
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q,
		sellerID,
		in.Title,
		in.Description,
		in.Price.String(),
		in.Stock,
		in.Discount.String(),
		in.ImageURL,
		in.Category,
		in.Brand,
		in.Tags,
		in.AdditionalImages,
	))
	if err != nil {
		r.logger.Printf("product repo: create seller_id=%d title=%q error=%v", sellerID, in.Title, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%d seller_id=%d", p.ID, sellerID)
	return p, nil
}

func (r *postgresRepo) Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	q := `
UPDATE products SET
    title = $2,
    description = $3,
    price = $4::numeric,
    stock = $5,
    discount = $6::numeric,
    image_url = $7,
    category = $8,
    brand = $9,
    tags = $10,
    additional_images = COALESCE(NULLIF($11, ''), '[]')
WHERE id = $1
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q,
		id,
		in.Title,
		in.Description,
		in.Price.String(),
		in.Stock,
		in.Discount.String(),
		in.ImageURL,
		in.Category,
		in.Brand,
		in.Tags,
		in.AdditionalImages,
	))
	if err != nil {
		r.logger.Printf("product repo: update id=%d error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%d", id)
	return p, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%d error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%d", id)
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p                       domain.Product
		price, discount, rating string
	)
	err := row.Scan(
		&p.ID,
		&p.Seller,
		&p.Title,
		&p.Description,
		&price,
		&p.Stock,
		&discount,
		&p.ImageURL,
		&p.Thumbnail,
		&rating,
		&p.ReviewsCount,
		&p.Category,
		&p.Brand,
		&p.Tags,
		&p.AdditionalImages,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("decode price id=%d: %w", p.ID, err)
	}
	if p.Discount, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("decode discount id=%d: %w", p.ID, err)
	}
	if p.Rating, err = decimal.NewFromString(rating); err != nil {
		return nil, fmt.Errorf("decode rating id=%d: %w", p.ID, err)
	}
	return &p, nil
}
