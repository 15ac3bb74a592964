package catalog

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
)

// Query parameter names of an encoded listing state.
const (
	ParamBrands   = "brands"
	ParamBattery  = "battery"
	ParamSize     = "size"
	ParamSearch   = "search"
	ParamMinPrice = "minPrice"
	ParamMaxPrice = "maxPrice"
	ParamSort     = "sort"
	ParamPage     = "page"
)

// listSep joins multi-valued parameters. Values containing it cannot be
// represented.
const listSep = ","

// EncodeState writes s as flat query parameters. Parameters equal to their
// default (empty lists and search, no price range, default sort, page 1)
// are omitted.
func EncodeState(s domain.FilterQueryState) url.Values {
	v := url.Values{}

	setList := func(name string, values []string) {
		if len(values) > 0 {
			v.Set(name, strings.Join(values, listSep))
		}
	}
	setList(ParamBrands, s.Brands)
	setList(ParamBattery, s.Battery)
	setList(ParamSize, s.Sizes)

	if s.Search != "" {
		v.Set(ParamSearch, s.Search)
	}
	if s.Price != nil {
		r := s.Price.Normalize()
		v.Set(ParamMinPrice, strconv.Itoa(r.Min))
		v.Set(ParamMaxPrice, strconv.Itoa(r.Max))
	}
	if s.Sort.Valid() && s.Sort != domain.DefaultSort {
		v.Set(ParamSort, string(s.Sort))
	}
	if s.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return v
}

// QueryString returns the encoded form of s, suitable for a URL's raw query.
func QueryString(s domain.FilterQueryState) string {
	return EncodeState(s).Encode()
}

// DecodeState reconstructs a listing state from query parameters. Malformed
// values fall back to their defaults rather than failing: a bad page is 1,
// an unknown sort is the default, and a price range with only one usable
// bound takes DefaultMinPrice or DefaultMaxPrice for the other.
func DecodeState(v url.Values) domain.FilterQueryState {
	s := domain.DefaultFilterState()

	s.Brands = splitList(v.Get(ParamBrands))
	s.Battery = splitList(v.Get(ParamBattery))
	s.Sizes = splitList(v.Get(ParamSize))
	s.Search = v.Get(ParamSearch)

	lo, hasLo := parseInt(v.Get(ParamMinPrice))
	hi, hasHi := parseInt(v.Get(ParamMaxPrice))
	if hasLo || hasHi {
		if !hasLo {
			lo = DefaultMinPrice
		}
		if !hasHi {
			hi = DefaultMaxPrice
		}
		r := domain.PriceRange{Min: lo, Max: hi}.Normalize()
		s.Price = &r
	}

	if key := domain.SortKey(v.Get(ParamSort)); key.Valid() {
		s.Sort = key
	}
	if page, ok := parseInt(v.Get(ParamPage)); ok && page >= 1 {
		s.Page = page
	}
	return s
}

// ParseQuery decodes a raw query string. An unparseable string yields the
// default state.
func ParseQuery(raw string) domain.FilterQueryState {
	v, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return DecodeState(url.Values{})
	}
	return DecodeState(v)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, listSep) {
		if item == "" {
			continue
		}
		if !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

// parseInt accepts integers and truncates decimal input toward negative
// infinity.
func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Floor(f)), true
}
