package shop

import (
	"sync"

	"github.com/google/uuid"

	"bookshop/internal/basket"
	"bookshop/internal/user"
)

// Session is the state a successful login produces: the authenticated user
// and the basket they are filling. Each session owns its basket exclusively;
// baskets never survive a re-login or a purchase.
type Session struct {
	User   user.User
	Basket *basket.Basket
}

// Registry keeps live sessions keyed by an opaque id, so a stateless front
// end (bearer token per request) can reach its session between calls.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put stores a session and returns its fresh id.
func (r *Registry) Put(s *Session) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return id
}

// Get returns the session for id, or nil when it is unknown or revoked.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Revoke drops the session for id. Safe to call for unknown ids.
func (r *Registry) Revoke(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
