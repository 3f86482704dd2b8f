package memdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipebox/errs"
	"recipebox/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *DB {
	t.Helper()
	d := New()
	ctx := context.Background()
	require.NoError(t, d.CreateUser(ctx, &models.User{ID: "u1", Username: "alice"}))
	require.NoError(t, d.CreateRecipe(ctx, &models.Recipe{
		ID: "r1", Name: "Soup", UserID: "u1", Ingredients: []string{"water"}, CookingTime: 10,
		CreatedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, d.CreateRecipe(ctx, &models.Recipe{
		ID: "r2", Name: "Salad", UserID: "u1", Ingredients: []string{"lettuce"}, CookingTime: 5,
		CreatedAt: time.Now(),
	}))
	return d
}

func TestRecordLike_Dedup(t *testing.T) {
	d := seed(t)
	ctx := context.Background()

	res, err := d.RecordLike(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Likes)
	assert.Equal(t, []string{"r1"}, res.LikedRecipes)

	_, err = d.RecordLike(ctx, "u1", "r1")
	assert.ErrorIs(t, err, errs.ErrAlreadyLiked)

	recipe, err := d.FindRecipeByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, recipe.Likes)
}

func TestRepairLike(t *testing.T) {
	d := seed(t)
	ctx := context.Background()
	d.InsertLikeRow("u1", "r2")

	require.NoError(t, d.RepairLike(ctx, "u1", "r2"))
	require.NoError(t, d.RepairLike(ctx, "u1", "r2"))

	user, err := d.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, user.LikedRecipes)

	recipe, err := d.FindRecipeByID(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, 1, recipe.Likes)
}

func TestCreateUser_UniqueUsername(t *testing.T) {
	d := seed(t)
	err := d.CreateUser(context.Background(), &models.User{ID: "u2", Username: "alice"})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestListRecipes(t *testing.T) {
	d := seed(t)
	ctx := context.Background()

	all, total, err := d.ListRecipes(ctx, models.RecipeQuery{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "r2", all[0].ID, "newest first by default")

	quick, _, err := d.ListRecipes(ctx, models.RecipeQuery{Sort: "quickest", Limit: 1})
	require.NoError(t, err)
	require.Len(t, quick, 1)
	assert.Equal(t, "Salad", quick[0].Name)

	found, total, err := d.ListRecipes(ctx, models.RecipeQuery{Search: "sou", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "r1", found[0].ID)
}

func TestSaveRecipe_OwnerFilter(t *testing.T) {
	d := seed(t)
	err := d.SaveRecipe(context.Background(), &models.Recipe{ID: "r1", UserID: "u2", Name: "Hijacked"})
	assert.ErrorIs(t, err, errs.ErrResourceNotFound)
}

func TestFail(t *testing.T) {
	d := seed(t)
	boom := errors.New("boom")
	d.Fail("FindUserByID", boom)

	_, err := d.FindUserByID(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, d.CallCount("FindUserByID"))

	d.Fail("FindUserByID", nil)
	_, err = d.FindUserByID(context.Background(), "u1")
	assert.NoError(t, err)
}

func TestRepairLike_AfterCompleteLikeKeepsCount(t *testing.T) {
	d := seed(t)
	ctx := context.Background()

	res, err := d.RecordLike(ctx, "u1", "r2")
	require.NoError(t, err)
	require.Equal(t, 1, res.Likes)

	require.NoError(t, d.RepairLike(ctx, "u1", "r2"))

	recipe, err := d.FindRecipeByID(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, 1, recipe.Likes)
}
