package catalog

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Browser is the navigation state of one category listing. Every change
// re-runs the query, so State and Result always describe what is shown
// and Values is the address to display.
type Browser struct {
	engine   *Engine
	category string
	scoped   []domain.Product
	facets   Facets
	result   Result
}

// Browse starts a listing of category over products at state, typically
// one decoded from the current address.
func (e *Engine) Browse(products []domain.Product, category string, state domain.FilterQueryState) *Browser {
	scoped := Scope(products, category)
	b := &Browser{
		engine:   e,
		category: category,
		scoped:   scoped,
		facets:   ExtractFacets(scoped, e.canonical),
	}
	b.apply(state)
	return b
}

func (b *Browser) apply(s domain.FilterQueryState) {
	b.result = b.engine.query(b.scoped, b.facets, s)
}

// Category returns the scope of the listing.
func (b *Browser) Category() string { return b.category }

// State returns the normalized listing state.
func (b *Browser) State() domain.FilterQueryState { return b.result.State.Clone() }

// Result returns the current page.
func (b *Browser) Result() Result { return b.result }

// Values returns the address parameters of the current state.
func (b *Browser) Values() url.Values { return EncodeState(b.result.State) }

// QueryString returns the encoded address of the current state.
func (b *Browser) QueryString() string { return QueryString(b.result.State) }

// Toggle adds value to the selection of f, or removes it when already
// selected, and returns to the first page.
func (b *Browser) Toggle(f domain.Facet, value string) error {
	if !f.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown facet %q", f))
	}
	if value == "" {
		return apperrors.InvalidInput("facet value is required")
	}

	s := b.State()
	selected := s.Selection(f)
	if i := slices.Index(selected, value); i >= 0 {
		selected = slices.Delete(slices.Clone(selected), i, i+1)
	} else {
		selected = append(slices.Clone(selected), value)
	}
	s = s.WithSelection(f, selected)
	s.Page = 1
	b.apply(s)
	return nil
}

// SetSearch replaces the free-text query and returns to the first page.
func (b *Browser) SetSearch(q string) {
	s := b.State()
	s.Search = q
	s.Page = 1
	b.apply(s)
}

// SetPriceRange restricts prices to [lo, hi], swapped if reversed and
// clamped to the category's bounds, and returns to the first page.
func (b *Browser) SetPriceRange(lo, hi int) {
	s := b.State()
	r := domain.PriceRange{Min: lo, Max: hi}
	s.Price = &r
	s.Page = 1
	b.apply(s)
}

// SetSort changes the ordering. The current page is kept.
func (b *Browser) SetSort(key domain.SortKey) {
	s := b.State()
	s.Sort = key
	b.apply(s)
}

// SetPage moves to page, clamped to the available pages.
func (b *Browser) SetPage(page int) {
	s := b.State()
	s.Page = page
	b.apply(s)
}

// ClearAll returns every field to its default.
func (b *Browser) ClearAll() {
	b.apply(domain.DefaultFilterState())
}
