package promotion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func products() []domain.Product {
	var out []domain.Product
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		out = append(out, domain.Product{ID: domain.ProductID(id), Model: "Model " + id, Price: 100})
	}
	return out
}

func TestTable_RulesOrderAndLimit(t *testing.T) {
	table, err := Load(strings.NewReader(`[{"product_id":5,"percent":25},{"product_id":"missing","percent":10},{"product_id":2,"percent":5}]`), 4)
	require.NoError(t, err)

	deals := table.Deals(products())
	require.Len(t, deals, 2)
	assert.Equal(t, domain.ProductID("5"), deals[0].ID)
	assert.Equal(t, 25, deals[0].DiscountPercent)
	assert.Equal(t, "75", deals[0].DiscountedPrice.String())
	assert.Equal(t, domain.ProductID("2"), deals[1].ID)
}

func TestTable_DeterministicWithoutRules(t *testing.T) {
	table, err := NewTable(nil, 0)
	require.NoError(t, err)

	first := table.Deals(products())
	second := table.Deals(products())
	require.Len(t, first, DefaultLimit)
	assert.Equal(t, first, second)
	for _, d := range first {
		assert.Contains(t, DefaultPercents, d.DiscountPercent)
	}
}

func TestApply_RoundsToCents(t *testing.T) {
	d := Apply(domain.Product{ID: "1", Price: 999.99}, 15)
	assert.Equal(t, "849.99", d.DiscountedPrice.String())
}

func TestLoad_InvalidRules(t *testing.T) {
	_, err := Load(strings.NewReader(`{`), 4)
	assert.ErrorIs(t, err, apperrors.ErrCorruptData)

	_, err = Load(strings.NewReader(`[{"product_id":1,"percent":95}]`), 4)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	table, err := LoadFile("", 2)
	require.NoError(t, err)
	assert.Len(t, table.Deals(products()), 2)

	path := filepath.Join(t.TempDir(), "promotions.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"product_id":3,"percent":30}]`), 0o600))
	table, err = LoadFile(path, 4)
	require.NoError(t, err)
	assert.Equal(t, 30, table.Percent("3"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.json"), 4)
	assert.Error(t, err)
}

func TestDeal_JSONKeepsDiscount(t *testing.T) {
	deal := Apply(domain.Product{ID: "9", Brand: "Apple", Model: "iPhone 15 Pro", Price: 999.99}, 15)

	data, err := json.Marshal(deal)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model":"iPhone 15 Pro"`)

	var back Deal
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, domain.ProductID("9"), back.ID)
	assert.Equal(t, "iPhone 15 Pro", back.Model)
	assert.Equal(t, 15, back.DiscountPercent)
	assert.True(t, deal.DiscountedPrice.Equal(back.DiscountedPrice), "got %s", back.DiscountedPrice)
}
