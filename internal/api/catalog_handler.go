package api

import (
	"net/http"

	"github.com/phrazzld/chemlab-api/internal/api/shared"
	"github.com/phrazzld/chemlab-api/internal/catalog"
)

// CatalogHandler serves the static catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// Molecules handles GET /api/catalog/molecules.
func (h *CatalogHandler) Molecules(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.catalog.Molecules())
}

// Chemicals handles GET /api/catalog/chemicals.
func (h *CatalogHandler) Chemicals(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.catalog.Chemicals())
}

// Tools handles GET /api/catalog/tools.
func (h *CatalogHandler) Tools(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.catalog.Tools())
}

// Topics handles GET /api/catalog/topics.
func (h *CatalogHandler) Topics(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.catalog.Topics())
}

// Elements handles GET /api/catalog/elements.
func (h *CatalogHandler) Elements(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.catalog.Elements())
}
