package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun/estate-market/backend/internal/models"
	"github.com/arjun/estate-market/backend/internal/store"
	"github.com/arjun/estate-market/backend/internal/token"
	"github.com/arjun/estate-market/backend/internal/web"
)

// fakeUserStore enforces the same unique constraints as the Postgres store.
type fakeUserStore struct {
	users      []*models.User
	nextID     int
	alwaysDupe bool // every create reports a username collision
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	if f.alwaysDupe {
		return nil, store.ErrDuplicateUsername
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, store.ErrDuplicateEmail
		}
	}
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return nil, store.ErrDuplicateUsername
		}
	}
	f.nextID++
	saved := *u
	saved.ID = fmt.Sprintf("u%d", f.nextID)
	f.users = append(f.users, &saved)
	out := saved
	return &out, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func newTestHandler(users *fakeUserStore) *Handler {
	return NewHandler(users, token.NewService("test-secret"))
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == web.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignUp(t *testing.T) {
	users := &fakeUserStore{}
	h := newTestHandler(users)

	rec := postJSON(t, h.SignUp, models.SignUpRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])

	userBody, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", userBody["username"])
	_, leaked := userBody["password"]
	assert.False(t, leaked, "password must never appear in a response")

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)

	// Stored hash is not the plaintext.
	require.Len(t, users.users, 1)
	assert.NotEqual(t, "hunter22", users.users[0].Password)
}

func TestSignUpMissingFields(t *testing.T) {
	h := newTestHandler(&fakeUserStore{})
	rec := postJSON(t, h.SignUp, models.SignUpRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	users := &fakeUserStore{}
	h := newTestHandler(users)

	req := models.SignUpRequest{Username: "alice", Email: "alice@example.com", Password: "pw"}
	require.Equal(t, http.StatusCreated, postJSON(t, h.SignUp, req).Code)

	// Repeats always conflict, no matter how often.
	for i := 0; i < 3; i++ {
		req.Username = fmt.Sprintf("alice%d", i)
		rec := postJSON(t, h.SignUp, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	}
	assert.Len(t, users.users, 1)
}

func TestSignInAfterSignUp(t *testing.T) {
	users := &fakeUserStore{}
	h := newTestHandler(users)

	postJSON(t, h.SignUp, models.SignUpRequest{Username: "alice", Email: "alice@example.com", Password: "hunter22"})

	rec := postJSON(t, h.SignIn, models.SignInRequest{Email: "alice@example.com", Password: "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)

	ident, err := token.NewService("test-secret").Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", ident.Email)
}

func TestSignInDoesNotRevealWhichCredentialFailed(t *testing.T) {
	users := &fakeUserStore{}
	h := newTestHandler(users)

	postJSON(t, h.SignUp, models.SignUpRequest{Username: "alice", Email: "alice@example.com", Password: "hunter22"})

	wrongPassword := postJSON(t, h.SignIn, models.SignInRequest{Email: "alice@example.com", Password: "nope"})
	unknownEmail := postJSON(t, h.SignIn, models.SignInRequest{Email: "nobody@example.com", Password: "nope"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String(),
		"the two failure modes must be indistinguishable")
}

func TestGoogleExistingEmailIsIdempotent(t *testing.T) {
	users := &fakeUserStore{}
	h := newTestHandler(users)

	postJSON(t, h.SignUp, models.SignUpRequest{Username: "alice", Email: "alice@example.com", Password: "pw"})

	for i := 0; i < 2; i++ {
		rec := postJSON(t, h.Google, models.GoogleRequest{Email: "alice@example.com"})
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, users.users, 1, "federated signin must never duplicate an existing account")
}

func TestGoogleNewEmailProvisionsUser(t *testing.T) {
	users := &fakeUserStore{}
	h := newTestHandler(users)

	rec := postJSON(t, h.Google, models.GoogleRequest{Email: "bob@example.com", Avatar: "https://cdn/b.png"})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	userBody := body["user"].(map[string]interface{})
	assert.Equal(t, "bob", userBody["username"])
	assert.Equal(t, "https://cdn/b.png", userBody["avatar"])
	assert.NotNil(t, sessionCookie(rec))
}

func TestGoogleUsernameSuffixOnCollision(t *testing.T) {
	users := &fakeUserStore{}
	h := newTestHandler(users)

	postJSON(t, h.SignUp, models.SignUpRequest{Username: "alice", Email: "alice@local.test", Password: "pw"})

	first := postJSON(t, h.Google, models.GoogleRequest{Email: "alice@x.com"})
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "alice1", decodeBody(t, first)["user"].(map[string]interface{})["username"])

	second := postJSON(t, h.Google, models.GoogleRequest{Email: "alice@y.com"})
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "alice2", decodeBody(t, second)["user"].(map[string]interface{})["username"])
}

func TestGoogleUsernameRetryExhaustion(t *testing.T) {
	h := newTestHandler(&fakeUserStore{alwaysDupe: true})

	rec := postJSON(t, h.Google, models.GoogleRequest{Email: "carol@example.com"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSignOutClearsCookie(t *testing.T) {
	h := newTestHandler(&fakeUserStore{})

	rec := httptest.NewRecorder()
	h.SignOut(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}
