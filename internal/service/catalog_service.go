package service

import (
	"context"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/store"
)

// CatalogService serves the catalog fixture.
type CatalogService interface {
	ListCatalogItems(ctx context.Context) []domain.CatalogItem
}

type catalogServiceImpl struct {
	catalog store.CatalogStore
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(catalog store.CatalogStore) (CatalogService, error) {
	if catalog == nil {
		return nil, domain.NewValidationError("catalog", "cannot be nil", domain.ErrValidation)
	}
	return &catalogServiceImpl{catalog: catalog}, nil
}

// ListCatalogItems implements CatalogService.ListCatalogItems
func (s *catalogServiceImpl) ListCatalogItems(ctx context.Context) []domain.CatalogItem {
	items := s.catalog.ListItems(ctx)
	if items == nil {
		return []domain.CatalogItem{}
	}
	return items
}
