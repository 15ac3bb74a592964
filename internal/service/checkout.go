package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// deliveryDateLayout is the format of scheduled delivery dates.
const deliveryDateLayout = "2006-01-02"

// CheckoutConfig prices the order summary.
type CheckoutConfig struct {
	Currency        currency.Unit
	EstimatedTax    decimal.Decimal
	ExpressShipping decimal.Decimal
}

// DefaultCheckoutConfig charges a flat 50 tax and 8.50 for express delivery.
func DefaultCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		Currency:        currency.USD,
		EstimatedTax:    decimal.NewFromInt(50),
		ExpressShipping: decimal.RequireFromString("8.50"),
	}
}

// SummaryInput is the shipping choice made in the checkout stepper.
type SummaryInput struct {
	Shipping     domain.ShippingMethod `json:"shipping" validate:"required,oneof=free express schedule"`
	DeliveryDate string                `json:"delivery_date"`
}

// CheckoutService prices the session's cart.
type CheckoutService struct {
	sessions *session.Registry
	cfg      CheckoutConfig
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(sessions *session.Registry, cfg CheckoutConfig) *CheckoutService {
	return &CheckoutService{sessions: sessions, cfg: cfg}
}

// Summary returns the order summary for the cart with the chosen shipping.
// Scheduled delivery requires a date.
func (s *CheckoutService) Summary(ctx context.Context, sessionID string, in SummaryInput) (domain.OrderSummary, error) {
	if sessionID == "" {
		return domain.OrderSummary{}, apperrors.InvalidInput("session id is required")
	}
	if err := validator.Validate(in); err != nil {
		return domain.OrderSummary{}, apperrors.InvalidInput(err.Error())
	}

	var date *time.Time
	if in.DeliveryDate != "" {
		d, err := time.Parse(deliveryDateLayout, in.DeliveryDate)
		if err != nil {
			return domain.OrderSummary{}, apperrors.InvalidInput("delivery_date must be a date in the format YYYY-MM-DD")
		}
		date = &d
	}

	shipping := decimal.Zero
	switch in.Shipping {
	case domain.ShippingExpress:
		shipping = s.cfg.ExpressShipping
	case domain.ShippingSchedule:
		if date == nil {
			return domain.OrderSummary{}, apperrors.InvalidInput("please select a delivery date for scheduled shipping")
		}
	}
	if in.Shipping != domain.ShippingSchedule {
		date = nil
	}

	var cart domain.Cart
	if err := s.sessions.With(ctx, sessionID, func(sess *session.Session) error {
		cart = sess.Cart.Cart()
		return nil
	}); err != nil {
		return domain.OrderSummary{}, err
	}

	subtotal := cart.Total()
	items := cart.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return domain.OrderSummary{
		Currency:     s.cfg.Currency.String(),
		Items:        items,
		TotalItems:   cart.TotalItems(),
		Subtotal:     subtotal,
		EstimatedTax: s.cfg.EstimatedTax,
		Shipping:     shipping,
		Total:        subtotal.Add(s.cfg.EstimatedTax).Add(shipping),
		Method:       in.Shipping,
		DeliveryDate: date,
	}, nil
}
