package promotion

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// DefaultPercents are the discount levels assigned when a product has no
// explicit rule.
var DefaultPercents = []int{5, 10, 15, 20, 25, 30}

// DefaultLimit is the number of deals shown.
const DefaultLimit = 4

// Rule discounts one product.
type Rule struct {
	ProductID domain.ProductID `json:"product_id" validate:"required"`
	Percent   int              `json:"percent" validate:"gte=1,lte=90"`
}

// Deal is a product with its discount applied.
type Deal struct {
	domain.Product
	DiscountPercent int             `json:"discount"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
}

// UnmarshalJSON decodes the flat deal object. It is needed because the
// embedded Product's decoder would otherwise drop the discount fields.
func (d *Deal) UnmarshalJSON(data []byte) error {
	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var discount struct {
		Percent int             `json:"discount"`
		Price   decimal.Decimal `json:"discounted_price"`
	}
	if err := json.Unmarshal(data, &discount); err != nil {
		return fmt.Errorf("decode deal: %w", err)
	}
	*d = Deal{Product: p, DiscountPercent: discount.Percent, DiscountedPrice: discount.Price}
	return nil
}

// Table assigns discounts deterministically. Products listed in the rules
// are offered first, in rule order; without rules every product gets a
// percentage derived from its id.
type Table struct {
	rules []Rule
	limit int
}

// NewTable creates a table from rules, showing at most limit deals.
func NewTable(rules []Rule, limit int) (*Table, error) {
	for i, r := range rules {
		if err := validator.Validate(r); err != nil {
			return nil, fmt.Errorf("promotion rule %d: %w", i, err)
		}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Table{rules: rules, limit: limit}, nil
}

// Load reads a JSON array of rules.
func Load(r io.Reader, limit int) (*Table, error) {
	var rules []Rule
	if err := json.NewDecoder(r).Decode(&rules); err != nil {
		return nil, apperrors.Corrupt("promotions", err)
	}
	return NewTable(rules, limit)
}

// LoadFile reads rules from path. An empty path yields a table without rules.
func LoadFile(path string, limit int) (*Table, error) {
	if path == "" {
		return NewTable(nil, limit)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open promotions: %w", err)
	}
	defer f.Close()
	return Load(f, limit)
}

// Percent returns the discount for id.
func (t *Table) Percent(id domain.ProductID) int {
	for _, r := range t.rules {
		if r.ProductID == id {
			return r.Percent
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return DefaultPercents[h.Sum32()%uint32(len(DefaultPercents))]
}

// Deals selects the discounted products from products.
func (t *Table) Deals(products []domain.Product) []Deal {
	var picked []domain.Product
	if len(t.rules) > 0 {
		byID := make(map[domain.ProductID]domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, r := range t.rules {
			if p, ok := byID[r.ProductID]; ok {
				picked = append(picked, p)
			}
		}
	} else {
		picked = products
	}
	if len(picked) > t.limit {
		picked = picked[:t.limit]
	}

	deals := make([]Deal, 0, len(picked))
	for _, p := range picked {
		deals = append(deals, Apply(p, t.Percent(p.ID)))
	}
	return deals
}

// Apply discounts p by percent, rounding to cents.
func Apply(p domain.Product, percent int) Deal {
	factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return Deal{
		Product:         p,
		DiscountPercent: percent,
		DiscountedPrice: decimal.NewFromFloat(p.Price).Mul(factor).Round(2),
	}
}
