package db

import (
	"context"

	"recipebox/models"
)

// UserStore persists users. Lookups return errs.ErrUserNotFound when no
// record exists.
type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
}

// RecipeStore persists recipes. Lookups return errs.ErrResourceNotFound when
// no record exists. SaveRecipe never touches the like counter.
type RecipeStore interface {
	FindRecipeByID(ctx context.Context, id string) (*models.Recipe, error)
	FindRecipeByName(ctx context.Context, name string) (*models.Recipe, error)
	FindRecipesByIDs(ctx context.Context, ids []string) ([]models.Recipe, error)
	ListRecipes(ctx context.Context, q models.RecipeQuery) ([]models.Recipe, int64, error)
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	SaveRecipe(ctx context.Context, recipe *models.Recipe) error
}

type ContactStore interface {
	CreateContact(ctx context.Context, msg *models.ContactMessage) error
}

// LikeStore owns the like rows and the two denormalised fields derived from
// them.
type LikeStore interface {
	// RecordLike inserts the (user, recipe) row, adds the recipe to the
	// user's liked set and increments the recipe counter. A duplicate row
	// yields errs.ErrAlreadyLiked and nothing else is written.
	RecordLike(ctx context.Context, userID, recipeID string) (*models.LikeResult, error)
	// RepairLike applies the denormalised writes for an existing row at most once.
	RepairLike(ctx context.Context, userID, recipeID string) error
}

// Stores bundles the persistence collaborators handed to the handlers.
type Stores struct {
	Users    UserStore
	Recipes  RecipeStore
	Contacts ContactStore
	Likes    LikeStore
}
