package api

import (
	"net/http"

	"github.com/phrazzld/irmock-api/internal/api/shared"
	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/service"
)

// CatalogHandler serves the catalog fixture
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCatalogItems handles GET /v2/catalog-items
func (h *CatalogHandler) ListCatalogItems(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, ItemsResponse[domain.CatalogItem]{
		Items: h.catalogService.ListCatalogItems(r.Context()),
	})
}

// ListMockCatalogItems handles GET /mock-catalog-items, which returns the
// bare item array.
func (h *CatalogHandler) ListMockCatalogItems(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.catalogService.ListCatalogItems(r.Context()))
}
