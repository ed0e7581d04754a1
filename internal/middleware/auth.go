package middleware

import (
	"context"
	"net/http"

	"github.com/arjun/estate-market/backend/internal/token"
	"github.com/arjun/estate-market/backend/internal/web"
)

type contextKey string

const identityKey contextKey = "identity"

// RequireSession validates the access_token cookie and injects the token's
// identity into the request context. It never queries the user store: the
// token claims are the source of truth for the request's identity. A missing
// cookie is 401, a token that fails verification is 403.
func RequireSession(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(web.SessionCookie)
			if err != nil {
				web.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ident, err := tokens.Parse(cookie.Value)
			if err != nil {
				web.Error(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the authenticated identity attached by RequireSession.
func IdentityFrom(ctx context.Context) (token.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(token.Identity)
	return ident, ok
}

// WithIdentity returns a context carrying the given identity, letting tests
// exercise handlers without running the middleware.
func WithIdentity(ctx context.Context, ident token.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}
