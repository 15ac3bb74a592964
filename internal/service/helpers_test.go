package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/logger"
)

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error {
	return m.Called(ctx, sessionID, cart).Error(0)
}

func (m *mockPublisher) PublishCartCleared(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockPublisher) PublishWishlistUpdated(ctx context.Context, sessionID string, wishlist domain.Wishlist) error {
	return m.Called(ctx, sessionID, wishlist).Error(0)
}

// --- Test Helpers ---

func newRegistry(t *testing.T) *session.Registry {
	t.Helper()
	return session.NewRegistry(memory.NewSnapshotStore(), session.Config{}, logger.Discard())
}

func cartProduct(id, model string, price float64) domain.CartProduct {
	return domain.CartProduct{
		ID:       domain.ProductID(id),
		Name:     model,
		Model:    model,
		Price:    price,
		Images:   []string{model + ".jpg"},
		Category: "smartphones",
	}
}

func wishlistEntry(id, model string, price float64) domain.WishlistEntry {
	return domain.WishlistEntry{
		ID:       domain.ProductID(id),
		Name:     model,
		Model:    model,
		Price:    price,
		Images:   []string{model + ".jpg"},
		Category: "smartphones",
		Brand:    "Apple",
	}
}

func totalItems(n int) any {
	return mock.MatchedBy(func(c domain.Cart) bool { return c.TotalItems() == n })
}

func wishlistSize(n int) any {
	return mock.MatchedBy(func(w domain.Wishlist) bool { return w.TotalItems() == n })
}
