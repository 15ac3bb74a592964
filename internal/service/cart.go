package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// UpdateQuantityInput holds the new quantity for a cart line.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity"`
}

// CartView is the cart as shown in the header badge and cart page.
type CartView struct {
	Items      []domain.CartLineItem `json:"items"`
	TotalItems int                   `json:"total_items"`
	Total      decimal.Decimal       `json:"total"`
}

func newCartView(c domain.Cart) CartView {
	items := c.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return CartView{Items: items, TotalItems: c.TotalItems(), Total: c.Total()}
}

// CartService runs cart operations against a shopper's session.
type CartService struct {
	sessions *session.Registry
	events   event.Publisher
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(sessions *session.Registry, events event.Publisher, l *slog.Logger) *CartService {
	return &CartService{sessions: sessions, events: events, logger: l}
}

// GetCart returns the session's cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (CartView, error) {
	var cart domain.Cart
	err := s.with(ctx, sessionID, func(sess *session.Session) error {
		cart = sess.Cart.Cart()
		return nil
	})
	return newCartView(cart), err
}

// AddItem adds one unit of p, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, p domain.CartProduct) (CartView, error) {
	if err := validator.Validate(p); err != nil {
		return CartView{}, apperrors.InvalidInput(err.Error())
	}
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.Cart.Add(ctx, p)
	})
}

// UpdateQuantity sets the quantity of id. Zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, id domain.ProductID, quantity int) (CartView, error) {
	if id == "" {
		return CartView{}, apperrors.InvalidInput("product id is required")
	}
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.Cart.UpdateQuantity(ctx, id, quantity)
	})
}

// RemoveItem deletes the line for id.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, id domain.ProductID) (CartView, error) {
	if id == "" {
		return CartView{}, apperrors.InvalidInput("product id is required")
	}
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.Cart.Remove(ctx, id)
	})
}

// ClearCart empties the cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.with(ctx, sessionID, func(sess *session.Session) error {
		sess.Cart.Clear(ctx)
		return nil
	}); err != nil {
		return err
	}

	if err := s.events.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*session.Session)) (CartView, error) {
	var cart domain.Cart
	if err := s.with(ctx, sessionID, func(sess *session.Session) error {
		fn(sess)
		cart = sess.Cart.Cart()
		return nil
	}); err != nil {
		return CartView{}, err
	}

	if err := s.events.PublishCartUpdated(ctx, sessionID, cart); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return newCartView(cart), nil
}

func (s *CartService) with(ctx context.Context, sessionID string, fn func(*session.Session) error) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}
	return s.sessions.With(ctx, sessionID, fn)
}
