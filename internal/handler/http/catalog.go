package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/promotion"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CatalogHandler handles HTTP requests for catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, l *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: l}
}

// listResponse is a product-derived list that may be empty because the
// catalog could not be fetched.
type listResponse[T any] struct {
	Items       []T  `json:"items"`
	Unavailable bool `json:"unavailable"`
}

// Categories handles GET /api/v1/catalog/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	items, unavailable := h.service.Categories(r.Context())
	httputil.WriteData(w, http.StatusOK, listResponse[string]{Items: items, Unavailable: unavailable})
}

// Brands handles GET /api/v1/catalog/brands
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	items, unavailable := h.service.Brands(r.Context())
	httputil.WriteData(w, http.StatusOK, listResponse[string]{Items: items, Unavailable: unavailable})
}

// Deals handles GET /api/v1/catalog/deals
func (h *CatalogHandler) Deals(w http.ResponseWriter, r *http.Request) {
	deals, unavailable := h.service.Deals(r.Context())
	httputil.WriteData(w, http.StatusOK, listResponse[promotion.Deal]{Items: deals, Unavailable: unavailable})
}

// Search handles GET /api/v1/catalog/search?q=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.Search(r.Context(), r.URL.Query().Get("q")))
}

// BrandDirectory handles GET /api/v1/catalog/directory/brands?q=
func (h *CatalogHandler) BrandDirectory(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.BrandDirectory(r.Context(), r.URL.Query().Get("q")))
}

// CategoryOverview handles GET /api/v1/catalog/directory/categories
func (h *CatalogHandler) CategoryOverview(w http.ResponseWriter, r *http.Request) {
	items, unavailable := h.service.CategoryOverview(r.Context())
	httputil.WriteData(w, http.StatusOK, listResponse[catalog.CategorySummary]{Items: items, Unavailable: unavailable})
}

// Home handles GET /api/v1/catalog/home?tab=
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	items, unavailable, err := h.service.Home(r.Context(), r.URL.Query().Get("tab"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, listResponse[domain.Product]{Items: items, Unavailable: unavailable})
}

// Browse handles GET /api/v1/catalog/categories/{category}/products
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	state := catalog.DecodeState(r.URL.Query())
	view := h.service.Browse(r.Context(), chi.URLParam(r, "category"), state)
	if view.Unavailable {
		w.Header().Set("Cache-Control", "no-store")
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// ApplyFilter handles POST /api/v1/catalog/categories/{category}/products/filters
func (h *CatalogHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var in service.FilterInput
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	state := catalog.DecodeState(r.URL.Query())
	view, err := h.service.ApplyFilter(r.Context(), chi.URLParam(r, "category"), state, in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// ProductBySlug handles GET /api/v1/catalog/categories/{category}/brands/{brand}/products/{slug}
func (h *CatalogHandler) ProductBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.ProductBySlug(r.Context(),
		chi.URLParam(r, "category"),
		chi.URLParam(r, "brand"),
		chi.URLParam(r, "slug"),
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}
