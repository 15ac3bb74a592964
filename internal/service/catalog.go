package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/promotion"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/slug"
	"github.com/utafrali/storefront/pkg/validator"
)

// Filter operations accepted by ApplyFilter.
const (
	OpToggleBrand   = "toggle_brand"
	OpToggleBattery = "toggle_battery"
	OpToggleSize    = "toggle_size"
	OpSearch        = "search"
	OpPrice         = "price"
	OpSort          = "sort"
	OpPage          = "page"
	OpClear         = "clear"
)

// FilterInput is one user interaction with the filter sidebar, sort menu or
// pagination controls.
type FilterInput struct {
	Op    string `json:"op" validate:"required,oneof=toggle_brand toggle_battery toggle_size search price sort page clear"`
	Value string `json:"value"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Page  int    `json:"page"`
}

// BrowseView is a category listing ready to render. Query is the canonical
// address query string for the view; Unavailable reports that the product
// source could not be reached and the listing is empty.
type BrowseView struct {
	Category string `json:"category"`
	catalog.Result
	Query       string `json:"query"`
	Unavailable bool   `json:"unavailable"`
}

// CatalogService serves product listings from a ProductSource.
type CatalogService struct {
	source   repository.ProductSource
	engine   *catalog.Engine
	promos   *promotion.Table
	logger   *slog.Logger
	failures prometheus.Counter
}

// CatalogOption configures a CatalogService.
type CatalogOption func(*CatalogService)

// WithCatalogMetrics counts product fetch failures on reg.
func WithCatalogMetrics(reg prometheus.Registerer) CatalogOption {
	return func(s *CatalogService) {
		s.failures = promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "storefront_catalog_fetch_failures_total",
			Help: "Product source fetches that failed.",
		})
	}
}

// NewCatalogService creates a catalog service.
func NewCatalogService(source repository.ProductSource, engine *catalog.Engine, promos *promotion.Table, l *slog.Logger, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{source: source, engine: engine, promos: promos, logger: l}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetch loads every product. A failing source yields an empty collection
// and ok=false; the caller shows an empty state with a manual retry.
func (s *CatalogService) fetch(ctx context.Context) (products []domain.Product, ok bool) {
	products, err := s.source.FetchProducts(ctx)
	if err != nil {
		if s.failures != nil {
			s.failures.Inc()
		}
		s.logger.WarnContext(ctx, "product fetch failed", slog.String("error", err.Error()))
		return []domain.Product{}, false
	}
	return products, true
}

// Browse renders the listing for category in state.
func (s *CatalogService) Browse(ctx context.Context, category string, state domain.FilterQueryState) BrowseView {
	products, ok := s.fetch(ctx)
	return s.view(s.engine.Browse(products, category, state), !ok)
}

// ApplyFilter applies in to the listing described by state and returns the
// resulting view. Facet, search and price changes go back to page 1.
func (s *CatalogService) ApplyFilter(ctx context.Context, category string, state domain.FilterQueryState, in FilterInput) (BrowseView, error) {
	if err := validator.Validate(in); err != nil {
		return BrowseView{}, apperrors.InvalidInput(err.Error())
	}

	products, ok := s.fetch(ctx)
	b := s.engine.Browse(products, category, state)

	switch in.Op {
	case OpToggleBrand:
		if err := b.Toggle(domain.FacetBrand, in.Value); err != nil {
			return BrowseView{}, err
		}
	case OpToggleBattery:
		if err := b.Toggle(domain.FacetBattery, in.Value); err != nil {
			return BrowseView{}, err
		}
	case OpToggleSize:
		if err := b.Toggle(domain.FacetSize, in.Value); err != nil {
			return BrowseView{}, err
		}
	case OpSearch:
		b.SetSearch(in.Value)
	case OpPrice:
		b.SetPriceRange(in.Min, in.Max)
	case OpSort:
		key := domain.SortKey(in.Value)
		if !key.Valid() {
			return BrowseView{}, apperrors.InvalidInput(fmt.Sprintf("unknown sort key %q", in.Value))
		}
		b.SetSort(key)
	case OpPage:
		b.SetPage(in.Page)
	case OpClear:
		b.ClearAll()
	}

	return s.view(b, !ok), nil
}

func (s *CatalogService) view(b *catalog.Browser, unavailable bool) BrowseView {
	return BrowseView{
		Category:    b.Category(),
		Result:      b.Result(),
		Query:       b.QueryString(),
		Unavailable: unavailable,
	}
}

// ProductBySlug finds the product in category and brand whose model name
// produces slugValue.
func (s *CatalogService) ProductBySlug(ctx context.Context, category, brand, slugValue string) (domain.Product, error) {
	products, ok := s.fetch(ctx)
	if !ok {
		return domain.Product{}, apperrors.Unavailable("product catalog is unavailable", nil)
	}

	for _, p := range catalog.Scope(products, category) {
		if strings.EqualFold(p.Brand, brand) && slug.Equal(p.Model, slugValue) {
			return p, nil
		}
	}
	return domain.Product{}, apperrors.NotFound("product", slugValue)
}

// Categories returns the distinct categories in catalog order. Categories
// differing only in case are one category, named as first seen.
func (s *CatalogService) Categories(ctx context.Context) ([]string, bool) {
	products, ok := s.fetch(ctx)
	return distinct(products, func(p domain.Product) string { return p.Category }), !ok
}

// Brands returns the distinct brands in catalog order.
func (s *CatalogService) Brands(ctx context.Context) ([]string, bool) {
	products, ok := s.fetch(ctx)
	return distinct(products, func(p domain.Product) string { return p.Brand }), !ok
}

// Deals returns the discounted products shown on the home page.
func (s *CatalogService) Deals(ctx context.Context) ([]promotion.Deal, bool) {
	products, ok := s.fetch(ctx)
	return s.promos.Deals(products), !ok
}

// SearchView is the result of a catalog-wide search.
type SearchView struct {
	Query       string                `json:"query"`
	Total       int                   `json:"total"`
	Groups      []catalog.SearchGroup `json:"groups"`
	Unavailable bool                  `json:"unavailable"`
}

// Search matches query against every product regardless of category.
func (s *CatalogService) Search(ctx context.Context, query string) SearchView {
	products, ok := s.fetch(ctx)
	view := SearchView{Query: query, Groups: catalog.Search(products, query), Unavailable: !ok}
	for _, g := range view.Groups {
		view.Total += len(g.Products)
	}
	return view
}

// BrandDirectory lists every brand with its product statistics.
type BrandDirectory struct {
	Brands      []catalog.BrandSummary `json:"brands"`
	Popular     []catalog.BrandSummary `json:"popular"`
	Unavailable bool                   `json:"unavailable"`
}

// BrandDirectory returns the brands whose name contains nameFilter,
// ignoring case, and the most stocked of them.
func (s *CatalogService) BrandDirectory(ctx context.Context, nameFilter string) BrandDirectory {
	products, ok := s.fetch(ctx)
	needle := strings.ToLower(strings.TrimSpace(nameFilter))

	brands := s.engine.Brands(products)
	if needle != "" {
		brands = slices.DeleteFunc(brands, func(b catalog.BrandSummary) bool {
			return !strings.Contains(strings.ToLower(b.Name), needle)
		})
	}
	return BrandDirectory{
		Brands:      brands,
		Popular:     catalog.Popular(brands, catalog.PopularLimit),
		Unavailable: !ok,
	}
}

// CategoryOverview returns one summary per category.
func (s *CatalogService) CategoryOverview(ctx context.Context) ([]catalog.CategorySummary, bool) {
	products, ok := s.fetch(ctx)
	return catalog.Categories(products), !ok
}

// HomeLimit is the number of products on a home page tab.
const HomeLimit = 8

// Home returns the products of a home page tab. An empty tab means new.
func (s *CatalogService) Home(ctx context.Context, tab string) ([]domain.Product, bool, error) {
	tab = strings.ToLower(strings.TrimSpace(tab))
	if tab == "" {
		tab = catalog.TabNew
	}
	if !catalog.ValidTab(tab) {
		return nil, false, apperrors.InvalidInput(fmt.Sprintf("unknown tab %q", tab))
	}
	products, ok := s.fetch(ctx)
	return catalog.Tagged(products, tab, HomeLimit), !ok, nil
}

func distinct(products []domain.Product, key func(domain.Product) string) []string {
	out := []string{}
	for _, p := range products {
		k := key(p)
		if k == "" {
			continue
		}
		if !slices.ContainsFunc(out, func(seen string) bool { return strings.EqualFold(seen, k) }) {
			out = append(out, k)
		}
	}
	return out
}
