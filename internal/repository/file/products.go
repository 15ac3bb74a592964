// Package file reads the product catalog from a static JSON file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ProductSource serves products from a JSON array on disk. The file is
// read on every fetch so edits show up without a restart.
type ProductSource struct {
	path string
}

// NewProductSource creates a file-backed product source.
func NewProductSource(path string) *ProductSource {
	return &ProductSource{path: path}
}

// catalogFile also accepts the {"products": [...]} wrapper.
type catalogFile struct {
	Products []domain.Product `json:"products"`
}

// FetchProducts returns the products in file order.
func (s *ProductSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("read catalog file %s", s.path), err)
	}
	return Decode(data)
}

// Decode parses a catalog document.
func Decode(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		var wrapped catalogFile
		if werr := json.Unmarshal(data, &wrapped); werr != nil || wrapped.Products == nil {
			return nil, apperrors.Corrupt("catalog file", err)
		}
		products = wrapped.Products
	}
	return domain.Identified(products), nil
}

// Ping checks that the catalog file is readable.
func (s *ProductSource) Ping(_ context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open catalog file: %w", err)
	}
	return f.Close()
}

// Write stores products as an indented JSON array.
func Write(path string, products []domain.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}
	return nil
}
