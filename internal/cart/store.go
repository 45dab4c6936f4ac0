package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	"storefront/internal/storage"
)

// StorageKey is the key the serialized cart lives under.
const StorageKey = "cart"

// Store owns the locally persisted cart. Every mutation is a single
// read-modify-persist step; the persisted record is the source of truth.
type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	logger  *log.Logger
}

func New(st storage.Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{storage: st, logger: logger}
}

// Load returns the persisted cart. A missing or unparsable record yields an
// empty cart.
func (s *Store) Load(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// AddOrIncrement adds one unit of product, snapshotting its title, price and
// image on first add.
func (s *Store) AddOrIncrement(ctx context.Context, product domain.Product) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) {
		if i := c.Find(product.ID); i >= 0 {
			c.Lines[i].Quantity++
			return
		}
		c.Lines = append(c.Lines, snapshotFromProduct(product))
	})
}

// UpdateQuantity changes a line by delta and clamps the result at 1. Unknown
// product ids leave the cart unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, delta int) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) {
		i := c.Find(productID)
		if i < 0 {
			return
		}
		c.Lines[i].Quantity = max(1, c.Lines[i].Quantity+delta)
	})
}

func (s *Store) Remove(ctx context.Context, productID int64) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) {
		i := c.Find(productID)
		if i < 0 {
			return
		}
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	})
}

// Clear empties the cart and removes the persisted record.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Delete(ctx, StorageKey)
}

func (s *Store) Total(ctx context.Context) (decimal.Decimal, error) {
	c, err := s.Load(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Total(), nil
}

func (s *Store) mutate(ctx context.Context, fn func(c *domain.Cart)) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	fn(&c)
	if err := s.persist(ctx, c); err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

func (s *Store) load(ctx context.Context) (domain.Cart, error) {
	raw, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}
	lines, err := Decode(raw)
	if err != nil {
		s.logger.Printf("cart store: discard unparsable cart err=%v", err)
		return domain.Cart{}, nil
	}
	return domain.Cart{Lines: lines}, nil
}

func (s *Store) persist(ctx context.Context, c domain.Cart) error {
	raw, err := Encode(c.Lines)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, StorageKey, raw)
}

// Encode serializes lines as a flat JSON array.
func Encode(lines []domain.CartLine) (string, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses a serialized cart. Lines with a non-positive quantity are
// normalized to 1 and duplicate product ids are merged into the first line.
func Decode(raw string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}
	out := make([]domain.CartLine, 0, len(lines))
	seen := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		if i, ok := seen[l.ID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		seen[l.ID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

func snapshotFromProduct(p domain.Product) domain.CartLine {
	return domain.CartLine{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Quantity: 1,
		ImageURL: p.Image(),
	}
}
