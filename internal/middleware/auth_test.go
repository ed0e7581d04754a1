package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun/estate-market/backend/internal/token"
	"github.com/arjun/estate-market/backend/internal/web"
)

func sessionHandler(t *testing.T, captured *token.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := IdentityFrom(r.Context())
		require.True(t, ok, "identity must be in context behind the middleware")
		*captured = ident
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSessionMissingCookie(t *testing.T) {
	tokens := token.NewService("test-secret")
	var ident token.Identity
	h := RequireSession(tokens)(sessionHandler(t, &ident))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Empty(t, ident.ID)
}

func TestRequireSessionBadToken(t *testing.T) {
	tokens := token.NewService("test-secret")
	var ident token.Identity
	h := RequireSession(tokens)(sessionHandler(t, &ident))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: web.SessionCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, ident.ID)
}

func TestRequireSessionWrongKey(t *testing.T) {
	tok, err := token.NewService("other-secret").Issue("u1", "a@example.com", "")
	require.NoError(t, err)

	var ident token.Identity
	h := RequireSession(token.NewService("test-secret"))(sessionHandler(t, &ident))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: web.SessionCookie, Value: tok})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireSessionValid(t *testing.T) {
	tokens := token.NewService("test-secret")
	tok, err := tokens.Issue("u1", "a@example.com", "https://cdn/a.png")
	require.NoError(t, err)

	var ident token.Identity
	h := RequireSession(tokens)(sessionHandler(t, &ident))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: web.SessionCookie, Value: tok})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", ident.ID)
	assert.Equal(t, "a@example.com", ident.Email)
	assert.Equal(t, "https://cdn/a.png", ident.Avatar)
}
