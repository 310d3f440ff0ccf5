package book

import (
	"context"
)

// Service provides catalog business logic over a Store.
type Service struct {
	store Store
}

// NewService creates a new catalog service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListAll returns every stored book, duplicates included.
func (s *Service) ListAll(ctx context.Context) ([]Book, error) {
	return s.store.ListAll(ctx)
}

// SearchByTitle returns all rows whose title contains the token.
// Matching is case-sensitive.
func (s *Service) SearchByTitle(ctx context.Context, token string) ([]Book, error) {
	if err := s.validateTitle(token); err != nil {
		return nil, err
	}
	return s.store.SearchByTitle(ctx, token)
}

// SearchByAuthor returns all rows whose author contains the token.
// Matching is case-sensitive.
func (s *Service) SearchByAuthor(ctx context.Context, token string) ([]Book, error) {
	if err := s.validateAuthor(token); err != nil {
		return nil, err
	}
	return s.store.SearchByAuthor(ctx, token)
}

// Add parses priceText and inserts one unit of the book. The returned book
// carries the parsed price.
func (s *Service) Add(ctx context.Context, title, author, priceText string) (Book, error) {
	if err := s.validateTitle(title); err != nil {
		return Book{}, err
	}
	if err := s.validateAuthor(author); err != nil {
		return Book{}, err
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		return Book{}, err
	}

	b := New(title, author, price)
	if err := s.store.Insert(ctx, b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Remove deletes exactly one stored unit matching b. It doubles as
// "decrement stock by one" and reports false when the book is out of stock.
func (s *Service) Remove(ctx context.Context, b Book) (bool, error) {
	return s.store.DeleteOneMatching(ctx, b)
}

// validateTitle and validateAuthor are extension points for malformation
// rules. No rules are enforced today.
func (s *Service) validateTitle(title string) error {
	return nil
}

func (s *Service) validateAuthor(author string) error {
	return nil
}
