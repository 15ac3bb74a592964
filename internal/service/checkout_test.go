package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

func newCheckoutFixture(t *testing.T) (*CheckoutService, *CartService) {
	t.Helper()
	reg := newRegistry(t)
	pub := &mockPublisher{}
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return NewCheckoutService(reg, DefaultCheckoutConfig()), NewCartService(reg, pub, logger.Discard())
}

func TestCheckoutService_Summary(t *testing.T) {
	tests := []struct {
		name      string
		in        SummaryInput
		wantShip  string
		wantTotal string
		wantDate  bool
	}{
		{"free", SummaryInput{Shipping: domain.ShippingFree}, "0", "1249.98", false},
		{"express", SummaryInput{Shipping: domain.ShippingExpress}, "8.5", "1258.48", false},
		{"schedule", SummaryInput{Shipping: domain.ShippingSchedule, DeliveryDate: "2026-11-02"}, "0", "1249.98", true},
		{"free ignores date", SummaryInput{Shipping: domain.ShippingFree, DeliveryDate: "2026-11-02"}, "0", "1249.98", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, carts := newCheckoutFixture(t)
			ctx := context.Background()
			_, err := carts.AddItem(ctx, "sess-1", cartProduct("1", "iPhone 15", 599.99))
			require.NoError(t, err)
			_, err = carts.AddItem(ctx, "sess-1", cartProduct("1", "iPhone 15", 599.99))
			require.NoError(t, err)

			sum, err := svc.Summary(ctx, "sess-1", tt.in)
			require.NoError(t, err)

			assert.Equal(t, "USD", sum.Currency)
			assert.Equal(t, 2, sum.TotalItems)
			assert.True(t, decimal.RequireFromString("1199.98").Equal(sum.Subtotal), sum.Subtotal.String())
			assert.True(t, decimal.NewFromInt(50).Equal(sum.EstimatedTax))
			assert.True(t, decimal.RequireFromString(tt.wantShip).Equal(sum.Shipping), sum.Shipping.String())
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(sum.Total), sum.Total.String())
			assert.Equal(t, tt.in.Shipping, sum.Method)
			if tt.wantDate {
				require.NotNil(t, sum.DeliveryDate)
				assert.True(t, sum.DeliveryDate.Equal(time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)))
			} else {
				assert.Nil(t, sum.DeliveryDate)
			}
		})
	}
}

func TestCheckoutService_SummaryEmptyCart(t *testing.T) {
	svc, _ := newCheckoutFixture(t)

	sum, err := svc.Summary(context.Background(), "sess-1", SummaryInput{Shipping: domain.ShippingFree})
	require.NoError(t, err)
	assert.NotNil(t, sum.Items)
	assert.True(t, sum.Subtotal.IsZero())
	assert.True(t, decimal.NewFromInt(50).Equal(sum.Total))
}

func TestCheckoutService_SummaryInvalid(t *testing.T) {
	svc, _ := newCheckoutFixture(t)
	ctx := context.Background()

	for name, in := range map[string]SummaryInput{
		"schedule without date": {Shipping: domain.ShippingSchedule},
		"unknown method":        {Shipping: "drone"},
		"missing method":        {},
		"malformed date":        {Shipping: domain.ShippingSchedule, DeliveryDate: "02/11/2026"},
	} {
		_, err := svc.Summary(ctx, "sess-1", in)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, name)
	}

	_, err := svc.Summary(ctx, "", SummaryInput{Shipping: domain.ShippingFree})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
