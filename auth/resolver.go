package auth

import (
	"context"

	"recipebox/db"
	"recipebox/models"
)

// Resolver loads the user a verified token refers to. A valid token can
// still name a user that no longer exists; that is errs.ErrUserNotFound.
type Resolver struct {
	users db.UserStore
}

func NewResolver(users db.UserStore) *Resolver {
	return &Resolver{users: users}
}

func (r *Resolver) Resolve(ctx context.Context, userID string) (*models.User, error) {
	return r.users.FindUserByID(ctx, userID)
}
