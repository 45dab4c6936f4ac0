// Package seed fills a development database with a seller and a
// deterministic catalog.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// SellerUsername owns every seeded product. Its password hash never matches,
// so the account cannot log in.
const SellerUsername = "seedbot"

var (
	categories = []string{"kitchen", "outdoor", "office", "toys", "audio"}
	brands     = []string{"Acme", "Northwind", "Globex", "Initech"}
	adjectives = []string{"Blue", "Compact", "Deluxe", "Rugged", "Classic", "Smart"}
	nouns      = []string{"Mug", "Lamp", "Backpack", "Speaker", "Notebook", "Kettle", "Tent"}
)

// Products returns count synthetic products. The same count always yields the
// same products.
func Products(count int) []domain.ProductInput {
	out := make([]domain.ProductInput, 0, max(count, 0))
	for i := 0; i < count; i++ {
		adj := adjectives[i%len(adjectives)]
		noun := nouns[(i/len(adjectives))%len(nouns)]
		cents := int64(499 + (i*737)%19500)
		out = append(out, domain.ProductInput{
			Title:            fmt.Sprintf("%s %s #%d", adj, noun, i+1),
			Description:      fmt.Sprintf("A %s %s for everyday use.", strings.ToLower(adj), strings.ToLower(noun)),
			Price:            decimal.New(cents, -2),
			Stock:            (i * 7) % 60,
			Category:         categories[i%len(categories)],
			Brand:            brands[i%len(brands)],
			Tags:             strings.ToLower(adj) + "," + strings.ToLower(noun),
			Discount:         decimal.NewFromInt(int64((i % 4) * 5)),
			ImageURL:         fmt.Sprintf("https://picsum.photos/seed/storefront-%d/600/400", i+1),
			AdditionalImages: "[]",
		})
	}
	return out
}

// Apply replaces the seed seller's catalog with Products(count). Running it
// twice with the same count leaves the same rows.
func Apply(ctx context.Context, pool *pgxpool.Pool, count int) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	sellerID, err := ensureSeller(ctx, tx)
	if err != nil {
		return fmt.Errorf("ensure seller: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE seller_id = $1`, sellerID); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	const q = `
INSERT INTO products (seller_id, title, description, price, stock, discount, image_url, thumbnail, category, brand, tags, additional_images)
VALUES ($1, $2, $3, $4::numeric, $5, $6::numeric, $7, $7, $8, $9, $10, $11)
`
	batch := &pgx.Batch{}
	for _, p := range Products(count) {
		batch.Queue(q, sellerID, p.Title, p.Description, p.Price.String(), p.Stock, p.Discount.String(),
			p.ImageURL, p.Category, p.Brand, p.Tags, p.AdditionalImages)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return tx.Commit(ctx)
}

func ensureSeller(ctx context.Context, tx pgx.Tx) (int64, error) {
	const q = `
INSERT INTO users (username, email, password_hash, user_type)
VALUES ($1, $2, '!', 'seller')
ON CONFLICT ((lower(username))) DO UPDATE SET user_type = 'seller'
RETURNING id
`
	var id int64
	if err := tx.QueryRow(ctx, q, SellerUsername, SellerUsername+"@example.com").Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

