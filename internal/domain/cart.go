package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// CartProduct is what a shopper adds to the cart: a line item without a quantity.
type CartProduct struct {
	ID       ProductID `json:"id" validate:"required"`
	Name     string    `json:"name"`
	Model    string    `json:"model"`
	Price    float64   `json:"price" validate:"gte=0"`
	Images   []string  `json:"images"`
	Category string    `json:"category"`
}

// CartLineItem is one product in the cart with its quantity (always >= 1).
type CartLineItem struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Model    string    `json:"model"`
	Price    float64   `json:"price"`
	Images   []string  `json:"images"`
	Category string    `json:"category"`
	Quantity int       `json:"quantity"`
}

// Subtotal returns price * quantity.
func (li CartLineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(li.Price).Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds at most one line item per product ID, in insertion order.
type Cart struct {
	Items []CartLineItem `json:"items"`
}

// CartEvent is a state transition applied by ReduceCart.
type CartEvent interface {
	isCartEvent()
}

// CartItemAdded increments the quantity of an existing line or appends a new one.
type CartItemAdded struct{ Product CartProduct }

// CartItemRemoved deletes the line for ID if present.
type CartItemRemoved struct{ ID ProductID }

// CartQuantityUpdated sets an absolute quantity; below 1 removes the line.
type CartQuantityUpdated struct {
	ID       ProductID
	Quantity int
}

// CartCleared empties the cart.
type CartCleared struct{}

func (CartItemAdded) isCartEvent()       {}
func (CartItemRemoved) isCartEvent()     {}
func (CartQuantityUpdated) isCartEvent() {}
func (CartCleared) isCartEvent()         {}

// ReduceCart returns the cart that results from applying e to c. It never
// mutates c.
func ReduceCart(c Cart, e CartEvent) Cart {
	items := slices.Clone(c.Items)

	switch e := e.(type) {
	case CartItemAdded:
		if i := c.index(e.Product.ID); i >= 0 {
			items[i].Quantity++
			return Cart{Items: items}
		}
		p := e.Product
		items = append(items, CartLineItem{
			ID:       p.ID,
			Name:     p.Name,
			Model:    p.Model,
			Price:    p.Price,
			Images:   nonNilStrings(p.Images),
			Category: p.Category,
			Quantity: 1,
		})

	case CartItemRemoved:
		items = slices.DeleteFunc(items, func(li CartLineItem) bool { return li.ID == e.ID })

	case CartQuantityUpdated:
		if e.Quantity < 1 {
			return ReduceCart(c, CartItemRemoved{ID: e.ID})
		}
		if i := c.index(e.ID); i >= 0 {
			items[i].Quantity = e.Quantity
		}

	case CartCleared:
		items = nil
	}

	return Cart{Items: items}
}

func (c Cart) index(id ProductID) int {
	return slices.IndexFunc(c.Items, func(li CartLineItem) bool { return li.ID == id })
}

// Quantity returns the quantity for id, or 0 when it is not in the cart.
func (c Cart) Quantity(id ProductID) int {
	if i := c.index(id); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Contains reports whether id has a line item.
func (c Cart) Contains(id ProductID) bool {
	return c.index(id) >= 0
}

// TotalItems is the sum of quantities.
func (c Cart) TotalItems() int {
	n := 0
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}

// Total is the sum of price * quantity over every line.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// NormalizeCart repairs a snapshot read back from storage: lines without an
// ID or with a quantity below 1 are dropped, duplicate IDs are merged into the
// first occurrence by summing quantities, and nil image lists become empty.
func NormalizeCart(items []CartLineItem) Cart {
	out := make([]CartLineItem, 0, len(items))
	seen := make(map[ProductID]int, len(items))

	for _, li := range items {
		if li.ID == "" || li.Quantity < 1 {
			continue
		}
		if li.Price < 0 {
			li.Price = 0
		}
		if i, ok := seen[li.ID]; ok {
			out[i].Quantity += li.Quantity
			continue
		}
		li.Images = nonNilStrings(li.Images)
		seen[li.ID] = len(out)
		out = append(out, li)
	}
	return Cart{Items: out}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
