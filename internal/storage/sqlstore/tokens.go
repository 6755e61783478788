package sqlstore

import (
	"context"
	"fmt"
)

// RevokeToken records tokenID as revoked until expiresAt (Unix seconds).
// Entries whose tokens have already expired are pruned on the way.
func (t *tx) RevokeToken(ctx context.Context, tokenID string, expiresAt int64) error {
	_, err := t.exec(ctx,
		`INSERT INTO revoked_tokens (token_id, expires_at) VALUES (?, ?)
		 ON CONFLICT (token_id) DO NOTHING`,
		tokenID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if _, err := t.exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, nowMillis()/1000); err != nil {
		return fmt.Errorf("failed to prune revoked tokens: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether tokenID is on the revocation list.
func (t *tx) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int
	if err := t.get(ctx, &n, `SELECT COUNT(*) FROM revoked_tokens WHERE token_id = ?`, tokenID); err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
