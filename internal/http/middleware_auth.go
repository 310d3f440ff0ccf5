package http

import (
	"context"
	"net/http"
	"strings"

	"bookshop/internal/auth"
	"bookshop/internal/shop"
)

type contextKey string

const sessionKey contextKey = "session"
const sessionIDKey contextKey = "sessionID"

// AuthMiddleware requires a Bearer token whose claims resolve to a live
// session in the registry, and puts the session on the request context.
func AuthMiddleware(secret string, sessions *shop.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, id := sessionFromRequest(secret, sessions, r)
			if sess == nil {
				JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			ctx = context.WithValue(ctx, sessionIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves a session when a valid token is present
// but lets the request through either way. Used for addUser, where a
// logged-out caller may still create a regular account.
func OptionalAuthMiddleware(secret string, sessions *shop.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if sess, id := sessionFromRequest(secret, sessions, r); sess != nil {
				ctx = context.WithValue(ctx, sessionKey, sess)
				ctx = context.WithValue(ctx, sessionIDKey, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(secret string, sessions *shop.Registry, r *http.Request) (*shop.Session, string) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := auth.ParseToken(secret, token)
	if err != nil {
		return nil, ""
	}
	return sessions.Get(claims.Sub), claims.Sub
}

// SessionFrom returns the session placed on the context by the middleware,
// or nil for an unauthenticated request.
func SessionFrom(r *http.Request) *shop.Session {
	if sess, ok := r.Context().Value(sessionKey).(*shop.Session); ok {
		return sess
	}
	return nil
}

// SessionIDFrom returns the registry id for the request's session.
func SessionIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}
