package catalog

import (
	"math"
	"slices"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
)

// Default price bounds used when a category has no products.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 2000
)

// Canonical holds the fixed display order of each facet. Values found in
// products but missing here are not offered as options.
type Canonical struct {
	Brands  []string
	Battery []string
	Sizes   []string
}

// DefaultCanonical returns the storefront's built-in facet lists.
func DefaultCanonical() Canonical {
	return Canonical{
		Brands: []string{
			"Apple", "Samsung", "Xiaomi", "OnePlus", "Oppo", "Huawei", "Google",
			"Dell", "HP", "Lenovo", "Asus", "Acer", "MSI",
			"Sony", "Bose", "Sennheiser", "Beats", "Audio-Technica", "JBL", "Jabra",
		},
		Battery: []string{
			"3200 mAh", "4000 mAh", "4500 mAh", "5000 mAh", "4880 mAh",
			"5400 mAh", "4815 mAh", "4700 mAh", "3100 mAh", "4400 mAh",
		},
		Sizes: []string{
			"5.4 inches", "6.1 inches", "6.3 inches", "6.5 inches", "6.7 inches", "6.9 inches",
		},
	}
}

// Facets are the selectable options derived from a category scope.
type Facets struct {
	Brands      []string          `json:"brands"`
	Battery     []string          `json:"battery"`
	Sizes       []string          `json:"size"`
	BrandCounts map[string]int    `json:"brand_counts"`
	PriceBounds domain.PriceRange `json:"price_bounds"`
}

// Scope returns the products whose category equals category, ignoring case.
// An empty category selects every product.
func Scope(products []domain.Product, category string) []domain.Product {
	if category == "" {
		return slices.Clone(products)
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// ExtractFacets computes the facet options present in products, in
// canonical order.
func ExtractFacets(products []domain.Product, canonical Canonical) Facets {
	brands := make(map[string]struct{})
	battery := make(map[string]struct{})
	sizes := make(map[string]struct{})
	counts := make(map[string]int)

	for _, p := range products {
		brands[p.Brand] = struct{}{}
		counts[p.Brand]++
		if v := p.Specifications.Battery; v != "" {
			battery[v] = struct{}{}
		}
		if v := p.Specifications.ScreenSize; v != "" {
			sizes[v] = struct{}{}
		}
	}

	return Facets{
		Brands:      present(canonical.Brands, brands),
		Battery:     present(canonical.Battery, battery),
		Sizes:       present(canonical.Sizes, sizes),
		BrandCounts: counts,
		PriceBounds: PriceBounds(products),
	}
}

func present(order []string, seen map[string]struct{}) []string {
	out := []string{}
	for _, v := range order {
		if _, ok := seen[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// PriceBounds returns [floor(min price), ceil(max price)] over products, or
// the default bounds when there are none.
func PriceBounds(products []domain.Product) domain.PriceRange {
	if len(products) == 0 {
		return domain.PriceRange{Min: DefaultMinPrice, Max: DefaultMaxPrice}
	}
	lo, hi := products[0].Price, products[0].Price
	for _, p := range products[1:] {
		lo = min(lo, p.Price)
		hi = max(hi, p.Price)
	}
	return domain.PriceRange{Min: int(math.Floor(lo)), Max: int(math.Ceil(hi))}
}
