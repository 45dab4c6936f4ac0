package product

import (
	"context"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the public catalog. search matches title or description;
// ordering is one of price, -price, title, -title.
func (s *Service) List(ctx context.Context, search, ordering string) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.Filter{Search: search, Ordering: ordering})
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID int64) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.Filter{SellerID: sellerID})
}

func (s *Service) Create(ctx context.Context, sellerID int64, in domain.ProductInput) (*domain.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, sellerID, in)
}

// Update replaces a product owned by sellerID.
func (s *Service) Update(ctx context.Context, sellerID, id int64, in domain.ProductInput) (*domain.Product, error) {
	if err := s.owned(ctx, sellerID, id); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, sellerID, id int64) error {
	if err := s.owned(ctx, sellerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) owned(ctx context.Context, sellerID, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Seller != sellerID {
		return domain.ErrForbidden
	}
	return nil
}
