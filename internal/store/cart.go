package store

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// CartStore owns one shopper's cart. Each mutation applies domain.ReduceCart
// and then writes the whole cart to its snapshot. It is not safe for
// concurrent use; callers serialize access per session.
type CartStore struct {
	cfg  config
	snap Snapshot
	cart domain.Cart
}

// NewCartStore restores the cart from snap. Missing or corrupt data starts
// an empty cart.
func NewCartStore(ctx context.Context, snap Snapshot, opts ...Option) *CartStore {
	cfg := newConfig(opts)
	items := restore[domain.CartLineItem](ctx, cfg, snap, string(repository.SlotCart))
	return &CartStore{
		cfg:  cfg,
		snap: snap,
		cart: domain.NormalizeCart(items),
	}
}

func (s *CartStore) apply(ctx context.Context, e domain.CartEvent) {
	s.cart = domain.ReduceCart(s.cart, e)
	persist(ctx, s.cfg, s.snap, string(repository.SlotCart), s.cart.Items)
}

// Add puts one more unit of p in the cart.
func (s *CartStore) Add(ctx context.Context, p domain.CartProduct) {
	s.apply(ctx, domain.CartItemAdded{Product: p})
	s.cfg.notifier.Info(p.Model + " added to cart!")
}

// Remove deletes the line for id. Removing an absent id is a no-op.
func (s *CartStore) Remove(ctx context.Context, id domain.ProductID) {
	s.apply(ctx, domain.CartItemRemoved{ID: id})
}

// UpdateQuantity sets the quantity for id; below 1 removes the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, id domain.ProductID, quantity int) {
	s.apply(ctx, domain.CartQuantityUpdated{ID: id, Quantity: quantity})
}

// Clear empties the cart and deletes its snapshot.
func (s *CartStore) Clear(ctx context.Context) {
	s.cart = domain.ReduceCart(s.cart, domain.CartCleared{})
	discard[domain.CartLineItem](ctx, s.cfg, s.snap, string(repository.SlotCart))
}

// Quantity returns the quantity of id, 0 when absent.
func (s *CartStore) Quantity(id domain.ProductID) int { return s.cart.Quantity(id) }

// Contains reports whether id is in the cart.
func (s *CartStore) Contains(id domain.ProductID) bool { return s.cart.Contains(id) }

// TotalItems is the sum of quantities.
func (s *CartStore) TotalItems() int { return s.cart.TotalItems() }

// Total is the sum of price * quantity.
func (s *CartStore) Total() decimal.Decimal { return s.cart.Total() }

// Items returns a copy of the line items in insertion order.
func (s *CartStore) Items() []domain.CartLineItem { return slices.Clone(s.cart.Items) }

// Cart returns a copy of the current cart.
func (s *CartStore) Cart() domain.Cart { return domain.Cart{Items: s.Items()} }
