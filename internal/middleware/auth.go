package middleware

import (
	"context"
	"net/http"

	"github.com/Sanket3107/Rupaya/internal/auth"
	"github.com/Sanket3107/Rupaya/internal/respond"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey is the context key for the authenticated caller.
const identityKey contextKey = "identity"

// IdentityResolver turns a bearer token into the caller's identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (auth.Identity, error)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity extracts the caller's identity from the context.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	id, _ := GetIdentity(ctx)
	return id.UserID
}

// RequireAuth rejects requests without a valid, unrevoked bearer token and
// stores the caller's identity in the request context.
func RequireAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, err)
				return
			}

			id, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				respond.Error(w, err)
				return
			}

			if rec, ok := w.(*statusRecorder); ok {
				rec.userID = id.UserID
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
