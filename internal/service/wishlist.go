package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// WishlistView is the saved-items page.
type WishlistView struct {
	Items      []domain.WishlistEntry `json:"items"`
	TotalItems int                    `json:"total_items"`
}

func newWishlistView(w domain.Wishlist) WishlistView {
	items := w.Items
	if items == nil {
		items = []domain.WishlistEntry{}
	}
	return WishlistView{Items: items, TotalItems: w.TotalItems()}
}

// ToggleResult reports the wishlist after a toggle and whether the product
// is saved.
type ToggleResult struct {
	WishlistView
	Saved bool `json:"saved"`
}

// WishlistService runs wishlist operations against a shopper's session.
type WishlistService struct {
	sessions *session.Registry
	events   event.Publisher
	logger   *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(sessions *session.Registry, events event.Publisher, l *slog.Logger) *WishlistService {
	return &WishlistService{sessions: sessions, events: events, logger: l}
}

// GetWishlist returns the session's wishlist.
func (s *WishlistService) GetWishlist(ctx context.Context, sessionID string) (WishlistView, error) {
	var wl domain.Wishlist
	err := s.with(ctx, sessionID, func(sess *session.Session) error {
		wl = sess.Wishlist.Wishlist()
		return nil
	})
	return newWishlistView(wl), err
}

// AddItem saves entry. Saving an already saved product changes nothing.
func (s *WishlistService) AddItem(ctx context.Context, sessionID string, entry domain.WishlistEntry) (WishlistView, error) {
	if err := validator.Validate(entry); err != nil {
		return WishlistView{}, apperrors.InvalidInput(err.Error())
	}
	res, err := s.mutate(ctx, sessionID, func(sess *session.Session) bool {
		return sess.Wishlist.Add(ctx, entry)
	})
	return res.WishlistView, err
}

// Toggle saves entry when absent and removes it when present.
func (s *WishlistService) Toggle(ctx context.Context, sessionID string, entry domain.WishlistEntry) (ToggleResult, error) {
	if err := validator.Validate(entry); err != nil {
		return ToggleResult{}, apperrors.InvalidInput(err.Error())
	}

	var saved bool
	res, err := s.mutate(ctx, sessionID, func(sess *session.Session) bool {
		saved = sess.Wishlist.Toggle(ctx, entry)
		return true
	})
	res.Saved = saved
	return res, err
}

// RemoveItem deletes the entry for id.
func (s *WishlistService) RemoveItem(ctx context.Context, sessionID string, id domain.ProductID) (WishlistView, error) {
	if id == "" {
		return WishlistView{}, apperrors.InvalidInput("product id is required")
	}
	res, err := s.mutate(ctx, sessionID, func(sess *session.Session) bool {
		return sess.Wishlist.Remove(ctx, id)
	})
	return res.WishlistView, err
}

// ClearWishlist empties the wishlist.
func (s *WishlistService) ClearWishlist(ctx context.Context, sessionID string) error {
	_, err := s.mutate(ctx, sessionID, func(sess *session.Session) bool {
		sess.Wishlist.Clear(ctx)
		return true
	})
	return err
}

// MoveToCart adds the saved product id to the cart and removes it from the
// wishlist in one step.
func (s *WishlistService) MoveToCart(ctx context.Context, sessionID string, id domain.ProductID) (WishlistView, error) {
	var (
		wl   domain.Wishlist
		cart domain.Cart
	)
	err := s.with(ctx, sessionID, func(sess *session.Session) error {
		entry, ok := sess.Wishlist.Get(id)
		if !ok {
			return apperrors.NotFound("wishlist item", id.String())
		}
		sess.Cart.Add(ctx, domain.CartProduct{
			ID:       entry.ID,
			Name:     entry.Name,
			Model:    entry.Model,
			Price:    entry.Price,
			Images:   entry.Images,
			Category: entry.Category,
		})
		sess.Wishlist.Remove(ctx, id)
		wl = sess.Wishlist.Wishlist()
		cart = sess.Cart.Cart()
		return nil
	})
	if err != nil {
		return WishlistView{}, err
	}

	if err := s.events.PublishCartUpdated(ctx, sessionID, cart); err != nil {
		s.logPublishFailure(ctx, sessionID, err)
	}
	if err := s.events.PublishWishlistUpdated(ctx, sessionID, wl); err != nil {
		s.logPublishFailure(ctx, sessionID, err)
	}
	return newWishlistView(wl), nil
}

// mutate runs fn and publishes the new wishlist when fn reports a change.
func (s *WishlistService) mutate(ctx context.Context, sessionID string, fn func(*session.Session) bool) (ToggleResult, error) {
	var (
		wl      domain.Wishlist
		changed bool
	)
	if err := s.with(ctx, sessionID, func(sess *session.Session) error {
		changed = fn(sess)
		wl = sess.Wishlist.Wishlist()
		return nil
	}); err != nil {
		return ToggleResult{}, err
	}

	if changed {
		if err := s.events.PublishWishlistUpdated(ctx, sessionID, wl); err != nil {
			s.logPublishFailure(ctx, sessionID, err)
		}
	}
	return ToggleResult{WishlistView: newWishlistView(wl)}, nil
}

func (s *WishlistService) logPublishFailure(ctx context.Context, sessionID string, err error) {
	s.logger.WarnContext(ctx, "failed to publish wishlist event",
		slog.String("session_id", sessionID),
		slog.String("error", err.Error()),
	)
}

func (s *WishlistService) with(ctx context.Context, sessionID string, fn func(*session.Session) error) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}
	return s.sessions.With(ctx, sessionID, fn)
}
