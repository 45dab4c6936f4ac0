package storage

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
)

// Postgres stores keys in the client_state table created by the migrations.
type Postgres struct {
	pool      *pgxpool.Pool
	namespace string
	logger    *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, namespace string, logger *log.Logger) *Postgres {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Postgres{pool: pool, namespace: namespace, logger: logger}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	const q = `
SELECT value
FROM client_state
WHERE namespace = $1 AND key = $2
`
	var v string
	if err := p.pool.QueryRow(ctx, q, p.namespace, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		p.logger.Printf("state repo: get namespace=%s key=%s error=%v", p.namespace, key, err)
		return "", err
	}
	return v, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO client_state (namespace, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (namespace, key) DO UPDATE
SET value = EXCLUDED.value, updated_at = NOW()
`
	if _, err := p.pool.Exec(ctx, q, p.namespace, key, value); err != nil {
		p.logger.Printf("state repo: set namespace=%s key=%s error=%v", p.namespace, key, err)
		return err
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM client_state WHERE namespace = $1 AND key = $2`, p.namespace, key)
	return err
}
