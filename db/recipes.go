package db

import (
	"context"
	"errors"
	"regexp"
	"time"

	"recipebox/errs"
	"recipebox/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecipeStoreMongo struct {
	coll *mongo.Collection
}

func NewRecipeStore(coll *mongo.Collection) *RecipeStoreMongo {
	return &RecipeStoreMongo{coll: coll}
}

// SortOptions lists the accepted values of the list "sort" parameter.
var SortOptions = map[string]bson.D{
	"newest":   {{Key: "createdAt", Value: -1}},
	"oldest":   {{Key: "createdAt", Value: 1}},
	"popular":  {{Key: "likes", Value: -1}, {Key: "createdAt", Value: -1}},
	"quickest": {{Key: "cookingTime", Value: 1}},
}

func (s *RecipeStoreMongo) FindRecipeByID(ctx context.Context, id string) (*models.Recipe, error) {
	return s.findOne(ctx, "find recipe", bson.M{"_id": id})
}

func (s *RecipeStoreMongo) FindRecipeByName(ctx context.Context, name string) (*models.Recipe, error) {
	return s.findOne(ctx, "find recipe by name", bson.M{"name": name})
}

func (s *RecipeStoreMongo) findOne(ctx context.Context, op string, filter bson.M) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.coll.FindOne(ctx, filter).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrResourceNotFound
	}
	if err != nil {
		return nil, errs.Store(op, err)
	}
	return &recipe, nil
}

func (s *RecipeStoreMongo) FindRecipesByIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	if len(ids) == 0 {
		return recipes, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errs.Store("find recipes", err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, errs.Store("decode recipes", err)
	}
	return recipes, nil
}

func (s *RecipeStoreMongo) ListRecipes(ctx context.Context, q models.RecipeQuery) ([]models.Recipe, int64, error) {
	filter := bson.M{}
	if q.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}

	sort, ok := SortOptions[q.Sort]
	if !ok {
		sort = SortOptions["newest"]
	}
	opts := options.Find().SetSort(sort).SetSkip(q.Skip).SetLimit(q.Limit)

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errs.Store("list recipes", err)
	}
	defer cursor.Close(ctx)

	recipes := []models.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, 0, errs.Store("decode recipes", err)
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errs.Store("count recipes", err)
	}
	return recipes, total, nil
}

func (s *RecipeStoreMongo) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	_, err := s.coll.InsertOne(ctx, recipe)
	return errs.Store("create recipe", err)
}

// SaveRecipe writes the owner-editable fields. The owner id is part of the
// filter so a recipe can never be saved under a different owner.
func (s *RecipeStoreMongo) SaveRecipe(ctx context.Context, recipe *models.Recipe) error {
	recipe.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": recipe.ID, "userId": recipe.UserID},
		bson.M{"$set": bson.M{
			"name":         recipe.Name,
			"imageUrl":     recipe.ImageURL,
			"ingredients":  recipe.Ingredients,
			"instructions": recipe.Instructions,
			"cookingTime":  recipe.CookingTime,
			"updatedAt":    recipe.UpdatedAt,
		}},
	)
	if err != nil {
		return errs.Store("save recipe", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrResourceNotFound
	}
	return nil
}
