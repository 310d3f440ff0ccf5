package store

import (
	"context"
	"strings"
	"sync"

	"bookshop/internal/book"
	"bookshop/internal/user"
)

// MemCatalog is an in-memory CatalogStore: a mutex-guarded slice with one
// element per unit in stock. It backs tests and the no-database mode of the
// API binary.
type MemCatalog struct {
	mu    sync.Mutex
	books []book.Book
}

func NewMemCatalog() *MemCatalog {
	return &MemCatalog{}
}

func (m *MemCatalog) ListAll(ctx context.Context) ([]book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]book.Book, len(m.books))
	copy(out, m.books)
	return out, nil
}

func (m *MemCatalog) SearchByTitle(ctx context.Context, substr string) ([]book.Book, error) {
	return m.search(func(b book.Book) bool {
		return strings.Contains(b.Title, substr)
	})
}

func (m *MemCatalog) SearchByAuthor(ctx context.Context, substr string) ([]book.Book, error) {
	return m.search(func(b book.Book) bool {
		return strings.Contains(b.Author, substr)
	})
}

func (m *MemCatalog) Insert(ctx context.Context, b book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = append(m.books, b)
	return nil
}

func (m *MemCatalog) DeleteOneMatching(ctx context.Context, b book.Book) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, stored := range m.books {
		if stored.Equal(b) {
			m.books = append(m.books[:i], m.books[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemCatalog) search(match func(book.Book) bool) ([]book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []book.Book
	for _, b := range m.books {
		if match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

// MemAccounts is an in-memory AccountStore keyed by username.
type MemAccounts struct {
	mu    sync.Mutex
	users map[string]user.User
}

func NewMemAccounts() *MemAccounts {
	return &MemAccounts{users: make(map[string]user.User)}
}

func (m *MemAccounts) Insert(ctx context.Context, u user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.Username]; exists {
		return user.ErrAlreadyExists
	}
	m.users[u.Username] = u
	return nil
}

func (m *MemAccounts) FindByUsername(ctx context.Context, username string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *MemAccounts) Delete(ctx context.Context, u user.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[u.Username]
	if !ok || !stored.Equal(u) {
		return false, nil
	}
	delete(m.users, u.Username)
	return true, nil
}
