package auth

import (
	"context"
	"time"

	"recipebox/db"
)

// Revoker records logged-out token ids until they expire.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) bool
}

// Handler serves the register, login and logout routes.
type Handler struct {
	users   db.UserStore
	codec   *TokenCodec
	revoker Revoker
}

// NewHandler builds the auth handlers. revoker may be nil, in which case
// logout only acknowledges the request.
func NewHandler(users db.UserStore, codec *TokenCodec, revoker Revoker) *Handler {
	return &Handler{users: users, codec: codec, revoker: revoker}
}
