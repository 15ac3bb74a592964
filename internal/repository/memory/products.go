package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// ProductSource serves a fixed product collection.
type ProductSource struct {
	mu       sync.RWMutex
	products []domain.Product
	err      error
}

// NewProductSource creates a source serving products.
func NewProductSource(products []domain.Product) *ProductSource {
	return &ProductSource{products: products}
}

// FetchProducts returns a copy of the collection, or the configured failure.
func (s *ProductSource) FetchProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.products), nil
}

// Replace swaps the served collection.
func (s *ProductSource) Replace(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
}

// Fail makes every fetch return err until it is called with nil.
func (s *ProductSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
