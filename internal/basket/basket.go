package basket

import (
	"github.com/shopspring/decimal"

	"bookshop/internal/book"
)

// Item is one line of the basket: a book and how many units of it are held.
// An item only exists while its quantity is positive.
type Item struct {
	Book     book.Book `json:"book"`
	Quantity int       `json:"quantity"`
}

// Basket holds the items a logged-in user intends to buy, together with a
// running total. The total is updated on every mutation, never recomputed
// lazily, so it always equals the sum of price times quantity over the items.
type Basket struct {
	items []*Item
	total decimal.Decimal
	limit int // max distinct-unit count, 0 means unlimited
}

// New returns an empty basket with no capacity limit.
func New() *Basket {
	return &Basket{total: decimal.Zero}
}

// NewWithLimit returns an empty basket that refuses to grow beyond limit
// total units.
func NewWithLimit(limit int) *Basket {
	b := New()
	b.limit = limit
	return b
}

// AddOne puts a single unit of b into the basket, creating the line item if
// this is the first unit. It reports false when the capacity limit is hit.
func (k *Basket) AddOne(b book.Book) bool {
	if k.limit > 0 && k.Units() >= k.limit {
		return false
	}

	item := k.find(b)
	if item == nil {
		item = &Item{Book: b}
		k.items = append(k.items, item)
	}
	item.Quantity++
	k.total = k.total.Add(b.Price)
	return true
}

// RemoveOne takes a single unit of b out of the basket, dropping the line
// item when its quantity reaches zero. Removing a book that is not in the
// basket reports false and leaves both items and total untouched, so the
// quantity can never go negative.
func (k *Basket) RemoveOne(b book.Book) bool {
	item := k.find(b)
	if item == nil {
		return false
	}

	if item.Quantity == 1 {
		for i, it := range k.items {
			if it == item {
				k.items = append(k.items[:i], k.items[i+1:]...)
				break
			}
		}
	} else {
		item.Quantity--
	}
	k.total = k.total.Sub(b.Price)
	return true
}

// Items returns a snapshot of the basket lines in insertion order.
func (k *Basket) Items() []Item {
	out := make([]Item, len(k.items))
	for i, item := range k.items {
		out[i] = *item
	}
	return out
}

// Total returns the running total.
func (k *Basket) Total() decimal.Decimal {
	return k.total
}

// Units returns the number of units across all line items.
func (k *Basket) Units() int {
	n := 0
	for _, item := range k.items {
		n += item.Quantity
	}
	return n
}

func (k *Basket) find(b book.Book) *Item {
	for _, item := range k.items {
		if item.Book.Equal(b) {
			return item
		}
	}
	return nil
}
