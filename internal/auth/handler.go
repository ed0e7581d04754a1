package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arjun/estate-market/backend/internal/models"
	"github.com/arjun/estate-market/backend/internal/store"
	"github.com/arjun/estate-market/backend/internal/token"
	"github.com/arjun/estate-market/backend/internal/web"
)

// maxUsernameAttempts bounds the suffix retry loop when deriving a username
// for a federated signup. Each attempt that loses the race against a
// concurrent insert surfaces as ErrDuplicateUsername and moves to the next
// suffix.
const maxUsernameAttempts = 25

// UserStore defines the user persistence the auth handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler holds the auth HTTP handlers.
type Handler struct {
	users  UserStore
	tokens *token.Service
}

func NewHandler(users UserStore, tokens *token.Service) *Handler {
	return &Handler{users: users, tokens: tokens}
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// SignUp creates a new local account and signs the user in.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		web.Error(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not create user")
		return
	}

	user, err := h.users.CreateUser(r.Context(), &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) || errors.Is(err, store.ErrDuplicateUsername) {
			web.Error(w, http.StatusConflict, "user already exists")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not create user")
		return
	}

	h.signIn(w, http.StatusCreated, "user created successfully", user)
}

// SignIn verifies local credentials. Unknown email and wrong password both
// answer 401 with the same message so the response can't be used to probe
// which emails are registered.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		web.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not sign in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		web.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.signIn(w, http.StatusOK, "user signed in successfully", user)
}

// Google handles identity-provider-asserted signin. An existing email is
// signed in without a password check; a new email is auto-provisioned with a
// throwaway password and a username derived from the email's local part.
func (h *Handler) Google(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		web.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	switch {
	case err == nil:
		h.signIn(w, http.StatusOK, "user signed in via Google", user)
	case errors.Is(err, store.ErrNotFound):
		h.provision(w, r, req)
	default:
		web.Error(w, http.StatusInternalServerError, "could not sign in")
	}
}

// provision registers a first-time federated user. Username uniqueness is
// enforced by the store constraint; a duplicate simply advances the suffix,
// so two concurrent signups deriving the same base name cannot both win.
func (h *Handler) provision(w http.ResponseWriter, r *http.Request, req models.GoogleRequest) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not create user")
		return
	}

	base := usernameFromEmail(req.Email)
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		name := base
		if attempt > 0 {
			name = fmt.Sprintf("%s%d", base, attempt)
		}

		user, err := h.users.CreateUser(r.Context(), &models.User{
			Username: name,
			Email:    req.Email,
			Password: string(hashed),
			Avatar:   req.Avatar,
		})
		if errors.Is(err, store.ErrDuplicateUsername) {
			continue
		}
		if errors.Is(err, store.ErrDuplicateEmail) {
			// Lost a race with a concurrent signup for the same email;
			// fall back to signing the existing account in.
			existing, getErr := h.users.GetUserByEmail(r.Context(), req.Email)
			if getErr != nil {
				web.Error(w, http.StatusInternalServerError, "could not sign in")
				return
			}
			h.signIn(w, http.StatusOK, "user signed in via Google", existing)
			return
		}
		if err != nil {
			web.Error(w, http.StatusInternalServerError, "could not create user")
			return
		}

		h.signIn(w, http.StatusCreated, "user registered and signed in via Google", user)
		return
	}

	web.Error(w, http.StatusInternalServerError, "could not allocate a username")
}

// SignOut clears the session cookie. The issued token stays valid until it
// expires; stateless tokens have no revocation list.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	web.ClearSessionCookie(w)
	web.JSON(w, http.StatusOK, map[string]string{"message": "user signed out successfully"})
}

// signIn issues a token, sets the session cookie, and writes the common
// auth response shape.
func (h *Handler) signIn(w http.ResponseWriter, status int, message string, user *models.User) {
	tok, err := h.tokens.Issue(user.ID, user.Email, user.Avatar)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	web.SetSessionCookie(w, tok)
	web.JSON(w, status, authResponse{Message: message, Token: tok, User: user})
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(local)
}
