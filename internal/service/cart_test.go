package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/notify"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

func newCartService(t *testing.T) (*CartService, *NotificationService, *mockPublisher) {
	t.Helper()
	reg := newRegistry(t)
	pub := &mockPublisher{}
	return NewCartService(reg, pub, logger.Discard()), NewNotificationService(reg), pub
}

func TestCartService_AddItemMergesAndPublishes(t *testing.T) {
	svc, _, pub := newCartService(t)
	ctx := context.Background()

	pub.On("PublishCartUpdated", mock.Anything, "sess-1", totalItems(1)).Return(nil).Once()
	pub.On("PublishCartUpdated", mock.Anything, "sess-1", totalItems(2)).Return(nil).Once()

	_, err := svc.AddItem(ctx, "sess-1", cartProduct("1", "iPhone 15", 999))
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "sess-1", cartProduct("1", "iPhone 15", 999))
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 2, view.TotalItems)
	assert.True(t, decimal.NewFromInt(1998).Equal(view.Total))
	pub.AssertExpectations(t)
}

func TestCartService_AddItemEmitsToast(t *testing.T) {
	svc, notes, pub := newCartService(t)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.AddItem(context.Background(), "sess-1", cartProduct("1", "iPhone 15", 999))
	require.NoError(t, err)

	toasts, err := notes.Active(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.KindInfo, toasts[0].Kind)
	assert.Equal(t, "iPhone 15 added to cart!", toasts[0].Message)
}

func TestCartService_AddItemValidation(t *testing.T) {
	svc, _, pub := newCartService(t)

	_, err := svc.AddItem(context.Background(), "sess-1", cartProduct("", "iPhone 15", 999))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.AddItem(context.Background(), "sess-1", cartProduct("1", "iPhone 15", -1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.AddItem(context.Background(), "", cartProduct("1", "iPhone 15", 999))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_PublishFailureIsNotFatal(t *testing.T) {
	svc, _, pub := newCartService(t)
	pub.On("PublishCartUpdated", mock.Anything, "sess-1", mock.Anything).Return(errors.New("broker down"))

	view, err := svc.AddItem(context.Background(), "sess-1", cartProduct("1", "iPhone 15", 999))
	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalItems)
}

func TestCartService_UpdateQuantityAndRemove(t *testing.T) {
	svc, _, pub := newCartService(t)
	ctx := context.Background()
	pub.On("PublishCartUpdated", mock.Anything, "sess-1", mock.Anything).Return(nil)

	_, err := svc.AddItem(ctx, "sess-1", cartProduct("1", "iPhone 15", 999))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess-1", cartProduct("2", "Pixel 8", 699))
	require.NoError(t, err)

	view, err := svc.UpdateQuantity(ctx, "sess-1", "1", 5)
	require.NoError(t, err)
	assert.Equal(t, 6, view.TotalItems)

	view, err = svc.UpdateQuantity(ctx, "sess-1", "1", 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Pixel 8", view.Items[0].Model)

	view, err = svc.RemoveItem(ctx, "sess-1", "2")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.NotNil(t, view.Items)
	assert.True(t, view.Total.IsZero())

	_, err = svc.RemoveItem(ctx, "sess-1", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_ClearCart(t *testing.T) {
	svc, _, pub := newCartService(t)
	ctx := context.Background()
	pub.On("PublishCartUpdated", mock.Anything, "sess-1", mock.Anything).Return(nil)
	pub.On("PublishCartCleared", mock.Anything, "sess-1").Return(nil).Once()

	_, err := svc.AddItem(ctx, "sess-1", cartProduct("1", "iPhone 15", 999))
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(ctx, "sess-1"))

	view, err := svc.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Zero(t, view.TotalItems)
	pub.AssertExpectations(t)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	svc, _, pub := newCartService(t)
	ctx := context.Background()
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.AddItem(ctx, "sess-1", cartProduct("1", "iPhone 15", 999))
	require.NoError(t, err)

	view, err := svc.GetCart(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
