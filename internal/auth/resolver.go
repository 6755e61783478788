package auth

import (
	"context"
	"strings"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

// Identity is the authenticated caller of a ledger operation.
type Identity struct {
	UserID string
	Email  string
	Role   models.UserRole
}

// Resolver turns bearer tokens into identities and revokes them on logout.
type Resolver struct {
	jwt   *JWTManager
	store storage.Store
}

// NewResolver creates a resolver that checks tokens against the revocation
// list kept in store.
func NewResolver(jwt *JWTManager, store storage.Store) *Resolver {
	return &Resolver{jwt: jwt, store: store}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// Resolve validates token and returns the identity it carries. Invalid,
// expired and revoked tokens, and tokens of users who no longer exist, fail
// with an Unauthorized error.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := r.jwt.Validate(token)
	if err != nil {
		return Identity{}, err
	}

	var revoked bool
	err = r.store.View(ctx, func(tx storage.Tx) error {
		var err error
		if revoked, err = tx.IsTokenRevoked(ctx, claims.ID); err != nil || revoked {
			return err
		}
		_, err = tx.GetUserByID(ctx, claims.UserID)
		return err
	})
	if apperr.Is(err, apperr.KindNotFound) {
		return Identity{}, apperr.Unauthorized("user no longer exists")
	}
	if err != nil {
		return Identity{}, err
	}
	if revoked {
		return Identity{}, apperr.Unauthorized("token has been revoked")
	}

	role, err := models.ParseUserRole(claims.Role)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}

// Revoke adds token's jti to the revocation list until the token would have
// expired anyway.
func (r *Resolver) Revoke(ctx context.Context, token string) error {
	claims, err := r.jwt.Validate(token)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, func(tx storage.Tx) error {
		return tx.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Unix())
	})
}
