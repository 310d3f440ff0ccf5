package shop

import (
	"context"
	"strings"
	"sync"

	"bookshop/internal/basket"
	"bookshop/internal/book"
	"bookshop/internal/user"
)

// PurchaseStatus is the per-book outcome of a purchase.
type PurchaseStatus int

const (
	// StatusOK: one unit was removed from stock.
	StatusOK PurchaseStatus = iota
	// StatusNotInStock: no matching unit was left in the catalog.
	StatusNotInStock
	// StatusDoesNotExist is reserved for a book the catalog never carried.
	// The current purchase flow reports StatusNotInStock for that case too
	// and never produces this value.
	StatusDoesNotExist
)

func (s PurchaseStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotInStock:
		return "NOT_IN_STOCK"
	case StatusDoesNotExist:
		return "DOES_NOT_EXIST"
	}
	return "UNKNOWN"
}

// Shop is the facade over the catalog and account services. It creates
// sessions on login and runs every basket and purchase operation against an
// explicit session value, so nothing here assumes a single global user.
type Shop struct {
	catalog  *book.Service
	accounts *user.Service

	// purchaseMu serializes the check-then-remove sequence of concurrent
	// purchases against the shared catalog.
	purchaseMu sync.Mutex
}

// New creates the facade.
func New(catalog *book.Service, accounts *user.Service) *Shop {
	return &Shop{catalog: catalog, accounts: accounts}
}

// Login authenticates and returns a fresh session with an empty basket.
// On failure no session exists and the error propagates.
func (s *Shop) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.accounts.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Basket: basket.New()}, nil
}

// Search looks the catalog up for a logged-in user. An empty query returns
// the full catalog de-duplicated to one entry per distinct book. A non-empty
// query is split on whitespace; each unique token matches as a substring
// against both title and author, and the results are unioned without
// duplicates. Without a session the result is empty, not an error.
func (s *Shop) Search(ctx context.Context, sess *Session, query string) []book.Book {
	if sess == nil || sess.Basket == nil {
		return nil
	}

	// Only the exactly-empty query lists the catalog. A whitespace-only
	// query tokenizes to nothing and so unions to an empty result.
	if query == "" {
		all, err := s.catalog.ListAll(ctx)
		if err != nil {
			return nil
		}
		return dedup(all)
	}

	seenTokens := make(map[string]bool)
	var results []book.Book
	seen := make(map[string]bool)
	for _, token := range strings.Fields(query) {
		if seenTokens[token] {
			continue
		}
		seenTokens[token] = true

		byAuthor, err := s.catalog.SearchByAuthor(ctx, token)
		if err == nil {
			results = appendUnique(results, seen, byAuthor)
		}
		byTitle, err := s.catalog.SearchByTitle(ctx, token)
		if err == nil {
			results = appendUnique(results, seen, byTitle)
		}
	}
	return results
}

// AddToBasket performs quantity independent single-unit increments. Stock is
// not checked here; only purchase consults the catalog. Reports false when
// there is no session or an increment was refused.
func (s *Shop) AddToBasket(sess *Session, b book.Book, quantity int) bool {
	if sess == nil || sess.Basket == nil {
		return false
	}
	for i := 0; i < quantity; i++ {
		if !sess.Basket.AddOne(b) {
			return false
		}
	}
	return true
}

// RemoveFromBasket performs quantity independent single-unit decrements.
// Decrements past what the basket holds stop at zero and report false.
func (s *Shop) RemoveFromBasket(sess *Session, b book.Book, quantity int) bool {
	if sess == nil || sess.Basket == nil {
		return false
	}
	for i := 0; i < quantity; i++ {
		if !sess.Basket.RemoveOne(b) {
			return false
		}
	}
	return true
}

// ViewBasket returns the session's basket, or nil without a session.
func (s *Shop) ViewBasket(sess *Session) *basket.Basket {
	if sess == nil {
		return nil
	}
	return sess.Basket
}

// Purchase buys the given books in order: after the payment hook runs, each
// book gets one unit removed from the catalog, yielding StatusOK, or
// StatusNotInStock when none was left. Individual failures do not stop the
// sequence, and the basket is replaced with a fresh empty one regardless of
// the outcome. The returned slice parallels the input. Without a session
// the result is empty and nothing happens.
func (s *Shop) Purchase(ctx context.Context, sess *Session, books ...book.Book) []PurchaseStatus {
	if sess == nil || sess.Basket == nil {
		return nil
	}

	s.purchaseMu.Lock()
	defer s.purchaseMu.Unlock()

	s.processPayment(sess)

	statuses := make([]PurchaseStatus, len(books))
	for i, b := range books {
		removed, err := s.catalog.Remove(ctx, b)
		if removed && err == nil {
			statuses[i] = StatusOK
		} else {
			statuses[i] = StatusNotInStock
		}
	}

	sess.Basket = basket.New()
	return statuses
}

// AddUser registers an account. Creating an admin requires the caller to be
// logged in as an admin; anyone, logged in or not, may create a regular
// account. Rejections and store failures both report false.
func (s *Shop) AddUser(ctx context.Context, sess *Session, username, password string, admin bool) bool {
	if admin && (sess == nil || !sess.User.Admin) {
		return false
	}
	_, err := s.accounts.Create(ctx, username, password, admin)
	return err == nil
}

// RemoveUser deletes an account. A user deletes their own account by
// re-proving their password. An admin deletes any other account by
// re-proving their own password; the target's credential is not needed.
// Every failure reports false.
func (s *Shop) RemoveUser(ctx context.Context, sess *Session, username, password string) bool {
	if sess == nil {
		return false
	}

	if sess.User.Username == username {
		if _, err := s.accounts.Login(ctx, username, password); err != nil {
			return false
		}
		ok, err := s.accounts.Delete(ctx, username, password)
		return ok && err == nil
	}

	if !sess.User.Admin {
		return false
	}
	if _, err := s.accounts.Login(ctx, sess.User.Username, password); err != nil {
		return false
	}
	ok, err := s.accounts.DeleteStored(ctx, username)
	return ok && err == nil
}

// AddBook registers one unit of a new or existing book in the catalog.
func (s *Shop) AddBook(ctx context.Context, title, author, priceText string) bool {
	_, err := s.catalog.Add(ctx, title, author, priceText)
	return err == nil
}

// processPayment is the payment extension point. Nothing is charged today.
func (s *Shop) processPayment(sess *Session) {
}

func dedup(books []book.Book) []book.Book {
	seen := make(map[string]bool)
	return appendUnique(nil, seen, books)
}

func appendUnique(dst []book.Book, seen map[string]bool, src []book.Book) []book.Book {
	for _, b := range src {
		key := b.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		dst = append(dst, b)
	}
	return dst
}
