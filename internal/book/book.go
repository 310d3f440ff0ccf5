package book

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no stored book matches.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidPrice is returned when a price string cannot be parsed.
	ErrInvalidPrice = errors.New("invalid price")
)

// Book is a catalog record. It has no surrogate id: two books with the same
// title, author and price are the same book, and the number of identical rows
// in the catalog is the number of units in stock.
type Book struct {
	Title  string          `json:"title"`
	Author string          `json:"author"`
	Price  decimal.Decimal `json:"price"`
}

// New builds a book with an already-parsed price.
func New(title, author string, price decimal.Decimal) Book {
	return Book{Title: title, Author: author, Price: price}
}

// Equal reports structural equality on all three fields.
func (b Book) Equal(other Book) bool {
	return b.Title == other.Title &&
		b.Author == other.Author &&
		b.Price.Equal(other.Price)
}

// Key returns a string usable as a map key for dedup and basket lookup.
// decimal.Decimal is not comparable, so Book cannot be a map key itself.
func (b Book) Key() string {
	return b.Title + "\x00" + b.Author + "\x00" + b.Price.String()
}

// ParsePrice turns user-facing price text into a decimal. Thousands
// separators (commas) and surrounding whitespace are stripped first.
func ParsePrice(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	if price.IsNegative() {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return price, nil
}
