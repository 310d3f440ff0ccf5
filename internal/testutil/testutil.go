package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/shopspring/decimal"

	"bookshop/internal/auth"
	"bookshop/internal/book"
	"bookshop/internal/shop"
	"bookshop/internal/store"
	"bookshop/internal/user"
)

// MustBook builds a book, panicking on a bad price. Test data only.
func MustBook(title, author, price string) book.Book {
	p, err := decimal.NewFromString(price)
	if err != nil {
		panic(err)
	}
	return book.New(title, author, p)
}

// Fixture is a fully wired shop over in-memory stores.
type Fixture struct {
	Shop     *shop.Shop
	Catalog  *store.MemCatalog
	Accounts *store.MemAccounts
	Books    *book.Service
	Users    *user.Service
}

// NewFixture wires a shop with a plain-text hasher, one admin account
// ("admin"/"admin") and one regular account ("alice"/"secret").
func NewFixture() *Fixture {
	catalogStore := store.NewMemCatalog()
	accountStore := store.NewMemAccounts()
	users := user.NewService(accountStore, auth.PlainHasher{})
	books := book.NewService(catalogStore)

	ctx := context.Background()
	if _, err := users.Create(ctx, "admin", "admin", true); err != nil {
		panic(err)
	}
	if _, err := users.Create(ctx, "alice", "secret", false); err != nil {
		panic(err)
	}

	return &Fixture{
		Shop:     shop.New(books, users),
		Catalog:  catalogStore,
		Accounts: accountStore,
		Books:    books,
		Users:    users,
	}
}

// Stock inserts n identical units of a book into the catalog.
func (f *Fixture) Stock(b book.Book, n int) {
	for i := 0; i < n; i++ {
		if err := f.Catalog.Insert(context.Background(), b); err != nil {
			panic(err)
		}
	}
}

// MustLogin logs a fixture user in, panicking on failure.
func (f *Fixture) MustLogin(username, password string) *shop.Session {
	sess, err := f.Shop.Login(context.Background(), username, password)
	if err != nil {
		panic(err)
	}
	return sess
}

// NewRequest creates a JSON HTTP request for handler tests.
func NewRequest(method, path string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// NewRequestWithAuth creates a JSON HTTP request carrying a bearer token.
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// TokenFor registers sess and returns a bearer token resolving to it.
func TokenFor(secret string, sessions *shop.Registry, sess *shop.Session) string {
	id := sessions.Put(sess)
	token, err := auth.GenerateToken(secret, id, time.Hour)
	if err != nil {
		panic(err)
	}
	return token
}

// DecodeBody decodes a recorded JSON response body into a map.
func DecodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	_ = json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&body)
	return body
}
