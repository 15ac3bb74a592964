package main

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/slug"
)

// productNamespace makes generated IDs stable across runs with the same seed.
var productNamespace = uuid.MustParse("6f1c2a9e-3b7d-4e58-9a41-0c8d2f6b7e13")

var colors = []string{"black", "white", "silver", "blue", "green", "red", "gold"}

// categoryDef describes how products of one category are generated.
type categoryDef struct {
	Name     string
	Weight   float64 // share of total products
	Brands   []string
	MinPrice float64
	MaxPrice float64
	specs    func(f *gofakeit.Faker, c catalog.Canonical) domain.Specifications
}

var categories = []categoryDef{
	{
		Name:     "smartphones",
		Weight:   0.5,
		Brands:   []string{"Apple", "Samsung", "Xiaomi", "OnePlus", "Oppo", "Huawei", "Google"},
		MinPrice: 149,
		MaxPrice: 1599,
		specs: func(f *gofakeit.Faker, c catalog.Canonical) domain.Specifications {
			return domain.Specifications{
				Battery:       f.RandomString(c.Battery),
				ScreenSize:    f.RandomString(c.Sizes),
				Camera:        strconv.Itoa(f.IntRange(12, 200)) + " MP",
				BuiltInMemory: f.RandomString([]string{"128 GB", "256 GB", "512 GB", "1 TB"}),
			}
		},
	},
	{
		Name:     "laptops",
		Weight:   0.3,
		Brands:   []string{"Apple", "Dell", "HP", "Lenovo", "Asus", "Acer", "MSI"},
		MinPrice: 499,
		MaxPrice: 3499,
		specs: func(f *gofakeit.Faker, _ catalog.Canonical) domain.Specifications {
			return domain.Specifications{
				CPU:            f.RandomString([]string{"Intel Core i5", "Intel Core i7", "AMD Ryzen 7", "Apple M3"}),
				ScreenDiagonal: f.RandomString([]string{"13.3\"", "14\"", "15.6\"", "16\""}),
				BuiltInMemory:  f.RandomString([]string{"256 GB", "512 GB", "1 TB"}),
			}
		},
	},
	{
		Name:     "headphones",
		Weight:   0.2,
		Brands:   []string{"Sony", "Bose", "Sennheiser", "Beats", "Audio-Technica", "JBL", "Jabra"},
		MinPrice: 29,
		MaxPrice: 549,
		specs: func(f *gofakeit.Faker, _ catalog.Canonical) domain.Specifications {
			return domain.Specifications{
				BatteryCapacity: strconv.Itoa(f.IntRange(20, 60)) + " hours",
				Extra:           map[string]string{"noiseCancelling": strconv.FormatBool(f.Bool())},
			}
		},
	},
}

// homeTabs weights untagged products double.
var homeTabs = []string{"", "", catalog.TabNew, catalog.TabBestseller, catalog.TabFeatured}

// Generate returns total products spread over the built-in categories. The
// same seed and now always produce the same catalog.
func Generate(seed uint64, total int, now time.Time) []domain.Product {
	f := gofakeit.New(seed)
	canon := catalog.DefaultCanonical()

	products := make([]domain.Product, 0, total)
	for ci, c := range categories {
		n := int(float64(total) * c.Weight)
		if ci == len(categories)-1 {
			n = total - len(products)
		}
		for range n {
			i := len(products)
			brand := f.RandomString(c.Brands)
			model := fmt.Sprintf("%s %s %d", brand, titleWord(f.Word()), f.IntRange(1, 20))
			products = append(products, domain.Product{
				ID:             domain.ProductID(uuid.NewSHA1(productNamespace, []byte(strconv.Itoa(i))).String()),
				Category:       c.Name,
				Brand:          brand,
				Model:          model,
				Price:          math.Round(f.Float64Range(c.MinPrice, c.MaxPrice)) - 0.01,
				Color:          f.RandomString(colors),
				Images:         []string{"https://picsum.photos/seed/" + slug.Generate(model) + "/600/600"},
				Details:        fmt.Sprintf("%s %s with %s finish.", titleWord(f.Word()), c.Name, f.Word()),
				Specifications: c.specs(f, canon),
				Rating:         math.Round(f.Float64Range(3, 5)*10) / 10,
				Value:          f.RandomString(homeTabs),
				CreatedAt:      now.Add(-time.Duration(f.IntRange(0, 365*24)) * time.Hour).UTC(),
			})
		}
	}
	return products
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	if c := w[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + w[1:]
	}
	return w
}
