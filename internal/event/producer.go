package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront session events.
const (
	TopicCartUpdated     = "storefront.cart.updated"
	TopicCartCleared     = "storefront.cart.cleared"
	TopicWishlistUpdated = "storefront.wishlist.updated"
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
)

// SourceStorefront identifies events from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID  string          `json:"session_id"`
	Items      []CartItemData  `json:"items"`
	TotalItems int             `json:"total_items"`
	Total      decimal.Decimal `json:"total"`
}

// CartItemData is one line of a cart event.
type CartItemData struct {
	ProductID string  `json:"product_id"`
	Model     string  `json:"model"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string   `json:"session_id"`
	ProductIDs []string `json:"product_ids"`
	TotalItems int      `json:"total_items"`
}

// Publisher is what the services depend on.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error
	PublishCartCleared(ctx context.Context, sessionID string) error
	PublishWishlistUpdated(ctx context.Context, sessionID string, wishlist domain.Wishlist) error
}

// EventPublisher is the part of *pkgkafka.Producer used here.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront events to Kafka.
type Producer struct {
	kafka  EventPublisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka EventPublisher, l *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: l}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, li := range cart.Items {
		items[i] = CartItemData{
			ProductID: li.ID.String(),
			Model:     li.Model,
			Price:     li.Price,
			Quantity:  li.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID:  sessionID,
		Items:      items,
		TotalItems: cart.TotalItems(),
		Total:      cart.Total(),
	}
	if err := p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Int("total_items", data.TotalItems),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, CartClearedData{SessionID: sessionID})
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID string, wishlist domain.Wishlist) error {
	ids := make([]string, len(wishlist.Items))
	for i, e := range wishlist.Items {
		ids[i] = e.ID.String()
	}

	data := WishlistUpdatedData{SessionID: sessionID, ProductIDs: ids, TotalItems: len(ids)}
	return p.publish(ctx, TopicWishlistUpdated, sessionID, AggregateTypeWishlist, data)
}

func (p *Producer) publish(ctx context.Context, topic, sessionID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, sessionID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// Discard drops every event. It is used when Kafka is disabled.
type Discard struct{}

func (Discard) PublishCartUpdated(context.Context, string, domain.Cart) error         { return nil }
func (Discard) PublishCartCleared(context.Context, string) error                      { return nil }
func (Discard) PublishWishlistUpdated(context.Context, string, domain.Wishlist) error { return nil }

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = Discard{}
)
