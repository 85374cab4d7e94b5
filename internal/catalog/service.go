package catalog

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price < 0 {
		return Product{}, fmt.Errorf("%w: price must be >= 0", ErrInvalidProduct)
	}
	if p.TaxRate < 0 {
		return Product{}, fmt.Errorf("%w: tax rate must be >= 0", ErrInvalidProduct)
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Update(ctx context.Context, id int64, u ProductUpdate) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	if u.Empty() {
		return s.repo.Get(ctx, id)
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return Product{}, fmt.Errorf("%w: name cannot be blank", ErrInvalidProduct)
	}
	if u.Price != nil && *u.Price < 0 {
		return Product{}, fmt.Errorf("%w: price must be >= 0", ErrInvalidProduct)
	}
	return s.repo.Update(ctx, id, u)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
