package utils

import (
	"context"
	"net/http"
	"time"

	"recipebox/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the caller resolved by the authorization guard. It is only
// present on requests that passed the guard.
type Identity struct {
	UserID    string
	Username  string
	TokenID   string
	ExpiresAt time.Time
	User      *models.User
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

func GetUserIDFromRequest(r *http.Request) string {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return ""
	}
	return id.UserID
}
