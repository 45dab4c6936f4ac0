package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type stubRepo struct {
	products map[int64]domain.Product
	filters  []productrepo.Filter
	updated  int
	deleted  int
}

func (s *stubRepo) List(_ context.Context, f productrepo.Filter) ([]domain.Product, error) {
	s.filters = append(s.filters, f)
	return nil, nil
}

func (s *stubRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubRepo) Create(_ context.Context, sellerID int64, in domain.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: 99, Seller: sellerID, Title: in.Title}, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	s.updated++
	return &domain.Product{ID: id, Title: in.Title}, nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	s.deleted++
	return nil
}

func validInput() domain.ProductInput {
	return domain.ProductInput{Title: "Lamp", Description: "Bright", Price: decimal.NewFromInt(10), Stock: 1}
}

func TestService_OwnershipEnforced(t *testing.T) {
	repo := &stubRepo{products: map[int64]domain.Product{1: {ID: 1, Seller: 5}}}
	svc := New(repo)
	ctx := context.Background()

	if _, err := svc.Update(ctx, 6, 1, validInput()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, 6, 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, 5, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.updated != 0 || repo.deleted != 0 {
		t.Fatalf("repository must not be touched on rejected calls")
	}

	if _, err := svc.Update(ctx, 5, 1, validInput()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Delete(ctx, 5, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestService_CreateValidates(t *testing.T) {
	svc := New(&stubRepo{})
	in := validInput()
	in.Price = decimal.Zero
	if _, err := svc.Create(context.Background(), 5, in); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	p, err := svc.Create(context.Background(), 5, validInput())
	if err != nil || p.Seller != 5 {
		t.Fatalf("create: %+v %v", p, err)
	}
}

func TestService_ListPassesFilters(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)
	_, _ = svc.List(context.Background(), "mug", "-price")
	_, _ = svc.ListBySeller(context.Background(), 3)

	if len(repo.filters) != 2 {
		t.Fatalf("expected two list calls, got %d", len(repo.filters))
	}
	if repo.filters[0] != (productrepo.Filter{Search: "mug", Ordering: "-price"}) {
		t.Fatalf("unexpected filter %+v", repo.filters[0])
	}
	if repo.filters[1].SellerID != 3 {
		t.Fatalf("unexpected seller filter %+v", repo.filters[1])
	}
}
