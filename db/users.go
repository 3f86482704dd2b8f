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

type UserStoreMongo struct {
	coll *mongo.Collection
}

func NewUserStore(coll *mongo.Collection) *UserStoreMongo {
	return &UserStoreMongo{coll: coll}
}

func (s *UserStoreMongo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, "find user", bson.M{"_id": id})
}

func (s *UserStoreMongo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, "find user by username", bson.M{"username": username})
}

func (s *UserStoreMongo) findOne(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, errs.Store(op, err)
	}
	return &user, nil
}

func (s *UserStoreMongo) CreateUser(ctx context.Context, user *models.User) error {
	if user.LikedRecipes == nil {
		user.LikedRecipes = []string{}
	}
	_, err := s.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrConflict
	}
	return errs.Store("create user", err)
}

// SaveUser persists the editable profile fields.
func (s *UserStoreMongo) SaveUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{
			"email":     user.Email,
			"bio":       user.Bio,
			"updatedAt": user.UpdatedAt,
		}},
	)
	if err != nil {
		return errs.Store("save user", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
