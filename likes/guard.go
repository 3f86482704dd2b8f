package likes

import (
	"context"
	"errors"
	"time"

	"recipebox/db"
	"recipebox/errs"
	"recipebox/logging"
	"recipebox/models"
	"recipebox/mq"

	"go.uber.org/zap"
)

const lockTTL = 5 * time.Second

// Locker serialises concurrent likes of the same recipe by the same user.
// ok is false when another request holds the lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool)
}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string, time.Duration) (func(), bool) {
	return func() {}, true
}

// Guard records a like at most once per (user, recipe) and keeps the
// user's likedRecipes and the recipe's counter in step with the like rows.
type Guard struct {
	users   db.UserStore
	recipes db.RecipeStore
	store   db.LikeStore
	locker  Locker
	emitter mq.Emitter
}

// NewGuard builds a Guard. locker and emitter may be nil.
func NewGuard(users db.UserStore, recipes db.RecipeStore, store db.LikeStore, locker Locker, emitter mq.Emitter) *Guard {
	if locker == nil {
		locker = nopLocker{}
	}
	if emitter == nil {
		emitter = mq.Nop{}
	}
	return &Guard{
		users:   users,
		recipes: recipes,
		store:   store,
		locker:  locker,
		emitter: emitter,
	}
}

// Apply likes recipeID on behalf of userID.
func (g *Guard) Apply(ctx context.Context, userID, recipeID string) (*models.LikeResult, error) {
	user, err := g.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := g.recipes.FindRecipeByID(ctx, recipeID); err != nil {
		return nil, err
	}
	if user.HasLiked(recipeID) {
		return nil, errs.ErrAlreadyLiked
	}

	release, ok := g.locker.Acquire(ctx, models.LikeID(userID, recipeID), lockTTL)
	if !ok {
		return nil, errs.ErrAlreadyLiked
	}
	defer release()

	res, err := g.store.RecordLike(ctx, userID, recipeID)
	if errors.Is(err, errs.ErrAlreadyLiked) {
		// The row exists but the user we loaded did not list the recipe:
		// either a concurrent like won, or an earlier write stopped halfway.
		if rerr := g.store.RepairLike(ctx, userID, recipeID); rerr != nil {
			logging.Error("repair like", zap.String("userId", userID), zap.String("recipeId", recipeID), zap.Error(rerr))
		}
		return nil, errs.ErrAlreadyLiked
	}
	if err != nil {
		return nil, err
	}

	g.emitter.Emit(ctx, mq.Event{Type: mq.RecipeLiked, RecipeID: recipeID, UserID: userID})
	return res, nil
}
