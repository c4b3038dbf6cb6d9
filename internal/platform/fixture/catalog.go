package fixture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/store"
)

// Catalog implements store.CatalogStore over the catalog fixture.
type Catalog struct {
	items []domain.CatalogItem
}

var _ store.CatalogStore = (*Catalog)(nil)

// NewCatalog wraps items, keeping their order.
func NewCatalog(items []domain.CatalogItem) *Catalog {
	c := &Catalog{items: make([]domain.CatalogItem, len(items))}
	copy(c.items, items)
	return c
}

// LoadCatalog reads the catalog fixture at path. A missing file yields an
// empty catalog; a malformed one is an error.
func LoadCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	items, err := readList[domain.CatalogItem](path)
	if isNotExist(err) {
		if logger != nil {
			logger.Warn("catalog fixture not found, serving empty catalog", "path", path)
		}
		return NewCatalog(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog fixture: %w", err)
	}

	if logger != nil {
		logger.Info("loaded catalog fixture", "path", path, "item_count", len(items))
	}
	return NewCatalog(items), nil
}

// ListItems implements store.CatalogStore. The slice is a copy; the items
// themselves are shared and must not be modified.
func (c *Catalog) ListItems(_ context.Context) []domain.CatalogItem {
	items := make([]domain.CatalogItem, len(c.items))
	copy(items, c.items)
	return items
}
