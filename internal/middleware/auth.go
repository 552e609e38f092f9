package middleware

import (
	"context"
	"net/http"

	"admin-backend/internal/session"
)

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the resolved identity from context.
func IdentityFromContext(ctx context.Context) (*session.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(*session.Identity)
	return ident, ok
}

type AuthMiddleware struct {
	Sessions *session.Service
}

func NewAuthMiddleware(svc *session.Service) *AuthMiddleware {
	return &AuthMiddleware{Sessions: svc}
}

// RequireSession rejects requests without a valid session and attaches the
// resolved identity to the request context. It is a thin layer over
// Service.Require; the response is a plain 401 regardless of why
// resolution came up empty.
func (a *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := a.Sessions.Require(r.Context(), r)
		if err != nil {
			// Internal failures get the same response as a missing
			// session; the distinction must not leak to clients.
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireElevated additionally rejects identities without elevated
// privileges. Must wrap handlers inside RequireSession-protected routes or
// be used on its own; it resolves the session itself.
func (a *AuthMiddleware) RequireElevated(next http.Handler) http.Handler {
	return a.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := IdentityFromContext(r.Context())
		if !ok || !ident.IsElevated {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
