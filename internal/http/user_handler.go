package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"bookshop/internal/auth"
	"bookshop/internal/shop"
	"bookshop/internal/user"
)

const sessionTokenTTL = 12 * time.Hour

// UserHandler serves login/logout and account administration.
type UserHandler struct {
	shop     *shop.Shop
	sessions *shop.Registry
	secret   string
}

func NewUserHandler(s *shop.Shop, sessions *shop.Registry, secret string) *UserHandler {
	return &UserHandler{shop: s, sessions: sessions, secret: secret}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if details := ValidateStruct(req); len(details) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	sess, err := h.shop.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
			return
		}
		JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	id := h.sessions.Put(sess)
	token, err := auth.GenerateToken(h.secret, id, sessionTokenTTL)
	if err != nil {
		h.sessions.Revoke(id)
		JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	JSONSuccess(w, map[string]any{
		"token":      token,
		"username":   sess.User.Username,
		"admin":      sess.User.Admin,
		"expires_in": int(sessionTokenTTL.Seconds()),
	})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(SessionIDFrom(r))
	JSONSuccess(w, nil)
}

type addUserReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Admin    bool   `json:"admin"`
}

func (h *UserHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if details := ValidateStruct(req); len(details) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	if !h.shop.AddUser(r.Context(), SessionFrom(r), req.Username, req.Password, req.Admin) {
		JSONError(w, http.StatusForbidden, "REJECTED", "Could not create user", nil)
		return
	}

	JSONSuccessCreated(w, map[string]any{
		"username": req.Username,
		"admin":    req.Admin,
	})
}

type removeUserReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	var req removeUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if details := ValidateStruct(req); len(details) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	if !h.shop.RemoveUser(r.Context(), SessionFrom(r), req.Username, req.Password) {
		JSONError(w, http.StatusForbidden, "REJECTED", "Could not remove user", nil)
		return
	}

	JSONSuccess(w, map[string]any{"username": req.Username})
}
