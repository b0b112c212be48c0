package core

import (
	"context"
	"time"
)

// TokenStore remembers revoked session tokens until they expire.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
