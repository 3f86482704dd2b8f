package db

import (
	"context"
	"errors"
	"time"

	"recipebox/errs"
	"recipebox/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// LikeStoreMongo records likes. Without transactions the like row is the
// commit point: it is written first, so a crash before the denormalised
// writes leaves a row that RepairLike can later reconcile.
type LikeStoreMongo struct {
	client       *mongo.Client
	likes        *mongo.Collection
	users        *mongo.Collection
	recipes      *mongo.Collection
	transactions bool
}

func NewLikeStore(client *mongo.Client, likes, users, recipes *mongo.Collection, transactions bool) *LikeStoreMongo {
	return &LikeStoreMongo{
		client:       client,
		likes:        likes,
		users:        users,
		recipes:      recipes,
		transactions: transactions,
	}
}

func (s *LikeStoreMongo) RecordLike(ctx context.Context, userID, recipeID string) (*models.LikeResult, error) {
	if !s.transactions {
		return s.recordLike(ctx, userID, recipeID)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return nil, errs.Store("start session", err)
	}
	defer session.EndSession(ctx)

	out, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return s.recordLike(sc, userID, recipeID)
	})
	if err != nil {
		return nil, err
	}
	return out.(*models.LikeResult), nil
}

func (s *LikeStoreMongo) recordLike(ctx context.Context, userID, recipeID string) (*models.LikeResult, error) {
	like := models.Like{
		ID:        models.LikeID(userID, recipeID),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.likes.InsertOne(ctx, like); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.ErrAlreadyLiked
		}
		return nil, errs.Store("insert like", err)
	}

	if _, err := s.applyLike(ctx, userID, recipeID); err != nil {
		return nil, err
	}

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, errs.Store("load user", err)
	}

	var recipe models.Recipe
	err = s.recipes.FindOne(ctx, bson.M{"_id": recipeID}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrResourceNotFound
	}
	if err != nil {
		return nil, errs.Store("load recipe", err)
	}

	return &models.LikeResult{
		RecipeID:     recipeID,
		Likes:        recipe.Likes,
		LikedRecipes: user.LikedRecipes,
	}, nil
}

// RepairLike applies the denormalised writes for a like row that already
// exists. It is idempotent and never re-counts, so racing a live RecordLike
// cannot push the counter past the number of rows.
func (s *LikeStoreMongo) RepairLike(ctx context.Context, userID, recipeID string) error {
	_, err := s.applyLike(ctx, userID, recipeID)
	return err
}

// applyLike pushes recipeID onto the user's liked list only when it is absent
// and increments the recipe counter only when that push happened. The counter
// therefore moves at most once per (user, recipe) whichever caller gets there
// first.
func (s *LikeStoreMongo) applyLike(ctx context.Context, userID, recipeID string) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "likedRecipes": bson.M{"$ne": recipeID}},
		bson.M{"$push": bson.M{"likedRecipes": recipeID}},
	)
	if err != nil {
		return false, errs.Store("add liked recipe", err)
	}
	if res.ModifiedCount != 1 {
		return false, nil
	}

	res, err = s.recipes.UpdateOne(ctx,
		bson.M{"_id": recipeID},
		bson.M{"$inc": bson.M{"likes": 1}},
	)
	if err != nil {
		return true, errs.Store("increment likes", err)
	}
	if res.MatchedCount == 0 {
		return true, errs.ErrResourceNotFound
	}
	return true, nil
}
