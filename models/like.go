package models

import "time"

// Like is the join row between a user and a recipe. Its existence is the
// de-duplication source of truth; User.LikedRecipes and Recipe.Likes are
// denormalised from it.
type Like struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	RecipeID  string    `json:"recipeId" bson:"recipeId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// LikeID is the deterministic key of the (user, recipe) pair.
func LikeID(userID, recipeID string) string {
	return userID + ":" + recipeID
}

// LikeResult is returned after a successful like.
type LikeResult struct {
	RecipeID     string   `json:"recipeId"`
	Likes        int      `json:"likes"`
	LikedRecipes []string `json:"likedRecipes"`
}
