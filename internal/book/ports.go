package book

import (
	"context"
)

// Store defines the contract for catalog persistence. One row per unit in
// stock; duplicates are expected and meaningful.
type Store interface {
	ListAll(ctx context.Context) ([]Book, error)
	SearchByTitle(ctx context.Context, substr string) ([]Book, error)
	SearchByAuthor(ctx context.Context, substr string) ([]Book, error)
	Insert(ctx context.Context, b Book) error
	// DeleteOneMatching removes exactly one row whose (title, author, price)
	// equals b. It reports false when no row matched.
	DeleteOneMatching(ctx context.Context, b Book) (bool, error)
}
