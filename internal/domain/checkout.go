package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingMethod is the delivery option picked at checkout.
type ShippingMethod string

const (
	ShippingFree     ShippingMethod = "free"
	ShippingExpress  ShippingMethod = "express"
	ShippingSchedule ShippingMethod = "schedule"
)

// OrderSummary is the priced breakdown shown beside the checkout steps.
type OrderSummary struct {
	Currency     string          `json:"currency"`
	Items        []CartLineItem  `json:"items"`
	TotalItems   int             `json:"total_items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	EstimatedTax decimal.Decimal `json:"estimated_tax"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	Method       ShippingMethod  `json:"shipping_method"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
}
