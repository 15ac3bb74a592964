package catalog

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/slug"
)

// Home page tabs, matched against Product.Value.
const (
	TabNew        = "new"
	TabBestseller = "bestseller"
	TabFeatured   = "featured"
)

// ValidTab reports whether tab names a home page tab.
func ValidTab(tab string) bool {
	return tab == TabNew || tab == TabBestseller || tab == TabFeatured
}

// SearchGroup is the search hits of one category.
type SearchGroup struct {
	Category string           `json:"category"`
	Products []domain.Product `json:"products"`
}

// Search returns the products whose model, brand, category, details or CPU
// contain query, ignoring case. Hits are grouped by category in catalog
// order. A blank query matches nothing.
func Search(products []domain.Product, query string) []SearchGroup {
	groups := []SearchGroup{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return groups
	}

	index := make(map[string]int)
	for _, p := range products {
		if !globalMatch(p, q) {
			continue
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, SearchGroup{Category: p.Category})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	return groups
}

func globalMatch(p domain.Product, q string) bool {
	cpu, _ := p.Specifications.Get("CPU")
	for _, field := range []string{p.Model, p.Brand, p.Category, p.Details, cpu} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// CategorySummary is one entry of the category overview.
type CategorySummary struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
	Image string `json:"image"`
}

// PlaceholderImage is shown for a category whose first product has no image.
const PlaceholderImage = "/placeholder.png"

// Categories groups products by lower-cased category in catalog order.
// Name is the slug with its first letter upper-cased; Image is the first
// image of the first product.
func Categories(products []domain.Product) []CategorySummary {
	out := []CategorySummary{}
	index := make(map[string]int)
	for _, p := range products {
		key := strings.ToLower(strings.TrimSpace(p.Category))
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		image := PlaceholderImage
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		index[key] = len(out)
		out = append(out, CategorySummary{Name: capitalize(key), Slug: key, Count: 1, Image: image})
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// BrandSummary is one entry of the brand directory.
type BrandSummary struct {
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	ProductCount int            `json:"product_count"`
	Categories   []string       `json:"categories"`
	PriceRange   PriceSpan      `json:"price_range"`
	Featured     domain.Product `json:"featured_product"`
}

// PriceSpan is the exact lowest and highest price of a group of products.
type PriceSpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PopularLimit is the number of brands in the popular list.
const PopularLimit = 8

// Brands aggregates products per brand, ordered by name with the engine's
// collation. Featured is the brand's first product in catalog order.
func (e *Engine) Brands(products []domain.Product) []BrandSummary {
	var out []BrandSummary
	index := make(map[string]int)
	for _, p := range products {
		if p.Brand == "" {
			continue
		}
		i, ok := index[p.Brand]
		if !ok {
			i = len(out)
			index[p.Brand] = i
			out = append(out, BrandSummary{
				Name:       p.Brand,
				Slug:       slug.Generate(p.Brand),
				Categories: []string{},
				PriceRange: PriceSpan{Min: p.Price, Max: p.Price},
				Featured:   p,
			})
		}
		b := &out[i]
		b.ProductCount++
		b.PriceRange.Min = min(b.PriceRange.Min, p.Price)
		b.PriceRange.Max = max(b.PriceRange.Max, p.Price)
		if p.Category != "" && !slices.Contains(b.Categories, p.Category) {
			b.Categories = append(b.Categories, p.Category)
		}
	}

	col := collate.New(e.collation)
	slices.SortStableFunc(out, func(a, b BrandSummary) int { return col.CompareString(a.Name, b.Name) })
	if out == nil {
		out = []BrandSummary{}
	}
	return out
}

// Popular returns up to limit brands with the most products. Ties keep the
// order of brands.
func Popular(brands []BrandSummary, limit int) []BrandSummary {
	out := slices.Clone(brands)
	slices.SortStableFunc(out, func(a, b BrandSummary) int { return cmp.Compare(b.ProductCount, a.ProductCount) })
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []BrandSummary{}
	}
	return out
}

// Tagged returns the first limit products whose Value equals tab.
func Tagged(products []domain.Product, tab string, limit int) []domain.Product {
	out := []domain.Product{}
	for _, p := range products {
		if len(out) == limit {
			break
		}
		if strings.EqualFold(p.Value, tab) {
			out = append(out, p)
		}
	}
	return out
}
