package domain

import "slices"

// SortKey orders the filtered product collection.
type SortKey string

const (
	SortRating    SortKey = "rating"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNewest    SortKey = "newest"
	SortName      SortKey = "name"

	DefaultSort = SortRating
)

// SortKeys lists every valid sort key in display order.
var SortKeys = []SortKey{SortRating, SortPriceAsc, SortPriceDesc, SortNewest, SortName}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

// PriceRange is an inclusive integer price interval.
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Normalize clamps negative bounds to zero and swaps reversed bounds.
func (r PriceRange) Normalize() PriceRange {
	r.Min, r.Max = max(r.Min, 0), max(r.Max, 0)
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= float64(r.Min) && price <= float64(r.Max)
}

// ClampTo narrows r to bounds. A range entirely outside bounds collapses
// onto the nearest bound.
func (r PriceRange) ClampTo(bounds PriceRange) PriceRange {
	r = r.Normalize()
	clamp := func(v int) int { return min(max(v, bounds.Min), bounds.Max) }
	return PriceRange{Min: clamp(r.Min), Max: clamp(r.Max)}
}

// FilterQueryState is the complete, address-serializable state of a
// product listing. Facet selections keep insertion order and hold no
// duplicates. A nil Price means the full price range of the category.
type FilterQueryState struct {
	Brands  []string    `json:"brands"`
	Battery []string    `json:"battery"`
	Sizes   []string    `json:"size"`
	Search  string      `json:"search"`
	Price   *PriceRange `json:"price,omitempty"`
	Sort    SortKey     `json:"sort"`
	Page    int         `json:"page"`
}

// DefaultFilterState is the state of an address with no parameters.
func DefaultFilterState() FilterQueryState {
	return FilterQueryState{Sort: DefaultSort, Page: 1}
}

// Clone returns a deep copy.
func (s FilterQueryState) Clone() FilterQueryState {
	c := s
	c.Brands = slices.Clone(s.Brands)
	c.Battery = slices.Clone(s.Battery)
	c.Sizes = slices.Clone(s.Sizes)
	if s.Price != nil {
		p := *s.Price
		c.Price = &p
	}
	return c
}

// HasActiveFilters reports whether any predicate narrows the result.
func (s FilterQueryState) HasActiveFilters() bool {
	return len(s.Brands) > 0 || len(s.Battery) > 0 || len(s.Sizes) > 0 ||
		s.Search != "" || s.Price != nil
}

// Facet names a multi-valued filter predicate.
type Facet string

const (
	FacetBrand   Facet = "brands"
	FacetBattery Facet = "battery"
	FacetSize    Facet = "size"
)

// Selection returns the selected values for f.
func (s FilterQueryState) Selection(f Facet) []string {
	switch f {
	case FacetBrand:
		return s.Brands
	case FacetBattery:
		return s.Battery
	case FacetSize:
		return s.Sizes
	}
	return nil
}

// WithSelection returns a copy of s with the values for f replaced.
func (s FilterQueryState) WithSelection(f Facet, values []string) FilterQueryState {
	c := s.Clone()
	switch f {
	case FacetBrand:
		c.Brands = values
	case FacetBattery:
		c.Battery = values
	case FacetSize:
		c.Sizes = values
	}
	return c
}

// Valid reports whether f is a known facet.
func (f Facet) Valid() bool {
	return f == FacetBrand || f == FacetBattery || f == FacetSize
}
