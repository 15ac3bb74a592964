package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetchProducts_Array(t *testing.T) {
	path := writeFile(t, `[{"id":1,"category":"smartphones","brand":"Apple","model":"iPhone","price":999}]`)

	products, err := NewProductSource(path).FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.ProductID("1"), products[0].ID)
	assert.Equal(t, []string{}, products[0].Images)
}

func TestFetchProducts_WrappedDocument(t *testing.T) {
	path := writeFile(t, `{"products":[{"id":"a"},{"id":"b"}]}`)

	products, err := NewProductSource(path).FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.ProductID("b"), products[1].ID)
}

func TestFetchProducts_SkipsUnidentifiedRecords(t *testing.T) {
	path := writeFile(t, `[{"id":{"oid":1},"model":"Ghost"},{"id":null},{"id":3,"model":"Galaxy S24"}]`)

	products, err := NewProductSource(path).FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.ProductID("3"), products[0].ID)
}

func TestFetchProducts_Errors(t *testing.T) {
	_, err := NewProductSource(filepath.Join(t.TempDir(), "missing.json")).FetchProducts(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)

	_, err = NewProductSource(writeFile(t, `{"items": 3}`)).FetchProducts(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCorruptData)

	_, err = NewProductSource(writeFile(t, `not json`)).FetchProducts(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCorruptData)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewProductSource(writeFile(t, `[]`)).FetchProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteThenFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	want := []domain.Product{{
		ID: "42", Category: "smartphones", Brand: "Google", Model: "Pixel 8", Price: 699,
		Images:         []string{"p.jpg"},
		Specifications: domain.Specifications{ScreenSize: "6.2 inches", Extra: map[string]string{"chip": "Tensor"}},
		Rating:         4.4,
		CreatedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	require.NoError(t, Write(path, want))
	got, err := NewProductSource(path).FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
	assert.NoError(t, NewProductSource(path).Ping(context.Background()))
}
