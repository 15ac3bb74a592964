package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
)

// windowDelta is how many page links are shown either side of the current page.
const windowDelta = 2

// Engine filters, sorts and paginates a product collection. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	canonical Canonical
	pageSize  int
	collation language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithCanonical overrides the facet ordering lists.
func WithCanonical(c Canonical) Option {
	return func(e *Engine) { e.canonical = c }
}

// WithPageSize overrides the page size. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithCollation sets the language used to order products by name.
func WithCollation(tag language.Tag) Option {
	return func(e *Engine) { e.collation = tag }
}

// NewEngine creates an Engine with the default facet lists and page size.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		canonical: DefaultCanonical(),
		pageSize:  pagination.DefaultPageSize,
		collation: language.English,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PageSize returns the number of products per page.
func (e *Engine) PageSize() int { return e.pageSize }

// Result is one rendered page of a category listing.
type Result struct {
	Products         []domain.Product        `json:"products"`
	Facets           Facets                  `json:"facets"`
	State            domain.FilterQueryState `json:"state"`
	PriceRange       domain.PriceRange       `json:"price_range"`
	Total            int                     `json:"total"`
	Page             int                     `json:"page"`
	PageSize         int                     `json:"page_size"`
	TotalPages       int                     `json:"total_pages"`
	ShowPagination   bool                    `json:"show_pagination"`
	Pages            []pagination.Link       `json:"pages"`
	HasActiveFilters bool                    `json:"has_active_filters"` // drives "clear all"
}

// Query scopes products to category and applies state to produce the page
// to display. The returned State is state normalized: duplicate selections
// removed, the price range clamped to the category bounds, an unknown sort
// replaced by the default and the page clamped to [1, max(1, TotalPages)].
func (e *Engine) Query(products []domain.Product, category string, state domain.FilterQueryState) Result {
	scoped := Scope(products, category)
	return e.query(scoped, ExtractFacets(scoped, e.canonical), state)
}

func (e *Engine) query(scoped []domain.Product, facets Facets, state domain.FilterQueryState) Result {
	state = normalize(state, facets.PriceBounds)
	price := EffectivePrice(state, facets.PriceBounds)

	matched := e.Sort(Filter(scoped, state, price), state.Sort)

	total := len(matched)
	totalPages := pagination.TotalPages(total, e.pageSize)
	state.Page = pagination.Clamp(state.Page, totalPages)

	return Result{
		Products:       pagination.Page(matched, state.Page, e.pageSize),
		Facets:         facets,
		State:          state,
		PriceRange:     price,
		Total:          total,
		Page:           state.Page,
		PageSize:       e.pageSize,
		TotalPages:     totalPages,
		ShowPagination: totalPages > 1,
		Pages:          pagination.Window(state.Page, totalPages, windowDelta),

		HasActiveFilters: state.HasActiveFilters(),
	}
}

func normalize(s domain.FilterQueryState, bounds domain.PriceRange) domain.FilterQueryState {
	s = s.Clone()
	s.Brands = dedupe(s.Brands)
	s.Battery = dedupe(s.Battery)
	s.Sizes = dedupe(s.Sizes)
	if s.Price != nil {
		clamped := s.Price.ClampTo(bounds)
		s.Price = &clamped
	}
	if !s.Sort.Valid() {
		s.Sort = domain.DefaultSort
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// EffectivePrice is the price range a state filters on: its own range, or
// the category bounds when it has none.
func EffectivePrice(s domain.FilterQueryState, bounds domain.PriceRange) domain.PriceRange {
	if s.Price == nil {
		return bounds
	}
	return s.Price.Normalize()
}

// Filter returns the products that satisfy every predicate of state with
// price restricted to price. Input order is preserved.
func Filter(products []domain.Product, state domain.FilterQueryState, price domain.PriceRange) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, state, price) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether p satisfies every active predicate. Selections
// within one facet are alternatives; a product without the specification
// never matches a non-empty selection.
func Matches(p domain.Product, state domain.FilterQueryState, price domain.PriceRange) bool {
	if len(state.Brands) > 0 && !slices.Contains(state.Brands, p.Brand) {
		return false
	}
	if !specMatches(state.Battery, p.Specifications.Battery) {
		return false
	}
	if !specMatches(state.Sizes, p.Specifications.ScreenSize) {
		return false
	}
	if !searchMatches(p, state.Search) {
		return false
	}
	return price.Contains(p.Price)
}

func specMatches(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	return value != "" && slices.Contains(selected, value)
}

func searchMatches(p domain.Product, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Brand), q) ||
		strings.Contains(strings.ToLower(p.Model), q) ||
		strings.Contains(strings.ToLower(p.Details), q)
}

// Sort returns a copy of products ordered by key. Equal elements keep their
// relative order. Unknown keys sort by rating.
func (e *Engine) Sort(products []domain.Product, key domain.SortKey) []domain.Product {
	out := slices.Clone(products)

	var compare func(a, b domain.Product) int
	switch key {
	case domain.SortPriceAsc:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceDesc:
		compare = func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) }
	case domain.SortNewest:
		compare = func(a, b domain.Product) int { return b.Timestamp().Compare(a.Timestamp()) }
	case domain.SortName:
		// Collators keep internal buffers, so each sort gets its own.
		col := collate.New(e.collation)
		compare = func(a, b domain.Product) int { return col.CompareString(a.Model, b.Model) }
	default:
		compare = func(a, b domain.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	}

	slices.SortStableFunc(out, compare)
	return out
}
