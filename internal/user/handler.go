package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/arjun/estate-market/backend/internal/middleware"
	"github.com/arjun/estate-market/backend/internal/models"
	"github.com/arjun/estate-market/backend/internal/store"
	"github.com/arjun/estate-market/backend/internal/web"
)

// UserStore defines the persistence surface for profile operations.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ListingStore supplies the authenticated user's own listings.
type ListingStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Listing, error)
}

// Handler holds the user-profile HTTP handlers.
type Handler struct {
	users    UserStore
	listings ListingStore
}

func NewHandler(users UserStore, listings ListingStore) *Handler {
	return &Handler{users: users, listings: listings}
}

// Get returns a user's public profile. The password hash is excluded by the
// model's JSON tags.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "user not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}
	web.JSON(w, http.StatusOK, user)
}

type updateResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Update applies a partial profile change. Only the account owner may call
// it; a supplied password is re-hashed before storage.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")
	if !ident.Owns(id) {
		web.Error(w, http.StatusForbidden, "you can only update your own account")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "user not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}

	if v := strings.TrimSpace(req.Username); v != "" {
		user.Username = v
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		user.Email = v
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			web.Error(w, http.StatusInternalServerError, "could not update user")
			return
		}
		user.Password = string(hashed)
	}

	updated, err := h.users.UpdateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) || errors.Is(err, store.ErrDuplicateUsername) {
			web.Error(w, http.StatusConflict, "username or email already taken")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not update user")
		return
	}

	web.JSON(w, http.StatusOK, updateResponse{
		Success: true,
		Message: "user updated successfully",
		User:    updated,
	})
}

// Delete removes the authenticated user's own account and clears the
// session cookie. The issued token remains valid until expiry, but without
// a user record it no longer authorizes any profile mutation.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")
	if !ident.Owns(id) {
		web.Error(w, http.StatusForbidden, "you can only delete your own account")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "user not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not delete user")
		return
	}

	web.ClearSessionCookie(w)
	web.JSON(w, http.StatusOK, map[string]string{"message": "user deleted successfully"})
}

// Listings returns the authenticated user's own listings, newest first.
func (h *Handler) Listings(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")
	if !ident.Owns(id) {
		web.Error(w, http.StatusForbidden, "you can only view your own listings")
		return
	}

	listings, err := h.listings.ListByUser(r.Context(), id)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not load listings")
		return
	}
	web.JSON(w, http.StatusOK, listings)
}
