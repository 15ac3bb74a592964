package catalog

import (
	"net/url"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/utafrali/storefront/internal/domain"
)

func TestEncodeState_DefaultIsEmpty(t *testing.T) {
	assert.Empty(t, EncodeState(domain.DefaultFilterState()))
	assert.Equal(t, "", QueryString(domain.DefaultFilterState()))
}

func TestEncodeState_AllFields(t *testing.T) {
	s := domain.FilterQueryState{
		Brands:  []string{"Apple", "Samsung"},
		Battery: []string{"3200 mAh"},
		Sizes:   []string{"6.1 inches", "6.7 inches"},
		Search:  "pro max",
		Price:   &domain.PriceRange{Min: 900, Max: 100},
		Sort:    domain.SortNewest,
		Page:    3,
	}

	v := EncodeState(s)
	assert.Equal(t, "Apple,Samsung", v.Get("brands"))
	assert.Equal(t, "3200 mAh", v.Get("battery"))
	assert.Equal(t, "6.1 inches,6.7 inches", v.Get("size"))
	assert.Equal(t, "pro max", v.Get("search"))
	assert.Equal(t, "100", v.Get("minPrice"))
	assert.Equal(t, "900", v.Get("maxPrice"))
	assert.Equal(t, "newest", v.Get("sort"))
	assert.Equal(t, "3", v.Get("page"))
}

func TestEncodeState_OmitsDefaults(t *testing.T) {
	s := domain.DefaultFilterState()
	s.Sort = domain.SortRating
	s.Page = 1
	s.Brands = []string{}
	assert.Equal(t, "", QueryString(s))
}

func TestDecodeState_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  domain.FilterQueryState
	}{
		{"empty", "", domain.DefaultFilterState()},
		{"bad page", "page=abc", domain.DefaultFilterState()},
		{"zero page", "page=0", domain.DefaultFilterState()},
		{"unknown sort", "sort=popularity", domain.DefaultFilterState()},
		{"swapped price", "minPrice=800&maxPrice=200", domain.FilterQueryState{
			Price: &domain.PriceRange{Min: 200, Max: 800}, Sort: domain.SortRating, Page: 1,
		}},
		{"negative price", "minPrice=-50&maxPrice=300", domain.FilterQueryState{
			Price: &domain.PriceRange{Min: 0, Max: 300}, Sort: domain.SortRating, Page: 1,
		}},
		{"only min", "minPrice=150", domain.FilterQueryState{
			Price: &domain.PriceRange{Min: 150, Max: 2000}, Sort: domain.SortRating, Page: 1,
		}},
		{"only max", "maxPrice=150.9", domain.FilterQueryState{
			Price: &domain.PriceRange{Min: 0, Max: 150}, Sort: domain.SortRating, Page: 1,
		}},
		{"unparseable price", "minPrice=cheap", domain.DefaultFilterState()},
		{"list cleanup", "brands=Apple,,Apple,Sony", domain.FilterQueryState{
			Brands: []string{"Apple", "Sony"}, Sort: domain.SortRating, Page: 1,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseQuery(tc.query)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseQuery(%q) mismatch (-want +got):\n%s", tc.query, diff)
			}
		})
	}
}

func TestParseQuery_LeadingQuestionMark(t *testing.T) {
	s := ParseQuery("?brands=Apple&page=2")
	assert.Equal(t, []string{"Apple"}, s.Brands)
	assert.Equal(t, 2, s.Page)
}

func randomState(f *gofakeit.Faker) domain.FilterQueryState {
	canon := DefaultCanonical()
	s := domain.DefaultFilterState()
	s.Brands = pick(f, canon.Brands)
	s.Battery = pick(f, canon.Battery)
	s.Sizes = pick(f, canon.Sizes)
	if f.Bool() {
		s.Search = f.RandomString([]string{"iphone", "pro max", "a&b=c", "ünïcode", "50% off", "  spaced  "})
	}
	if f.Bool() {
		r := domain.PriceRange{Min: f.IntRange(0, 1000), Max: f.IntRange(0, 3000)}.Normalize()
		s.Price = &r
	}
	s.Sort = domain.SortKeys[f.IntRange(0, len(domain.SortKeys)-1)]
	s.Page = f.IntRange(1, 30)
	return s
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	f := gofakeit.New(11)
	for range 500 {
		want := randomState(f)

		encoded := QueryString(want)
		values, err := url.ParseQuery(encoded)
		if err != nil {
			t.Fatalf("parse %q: %v", encoded, err)
		}
		got := DecodeState(values)

		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("round trip of %q mismatch (-want +got):\n%s", encoded, diff)
		}
	}
}
