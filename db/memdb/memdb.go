// Package memdb is an in-process implementation of the db stores. It backs
// STORE_DRIVER=memory for local runs and doubles as the fake used in tests.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"recipebox/db"
	"recipebox/errs"
	"recipebox/models"
)

// DB keeps every collection behind one mutex, which makes RecordLike atomic.
type DB struct {
	mu       sync.Mutex
	users    map[string]models.User
	recipes  map[string]models.Recipe
	contacts []models.ContactMessage
	likes    map[string]models.Like

	calls    map[string]int
	failWith map[string]error
}

func New() *DB {
	return &DB{
		users:    map[string]models.User{},
		recipes:  map[string]models.Recipe{},
		likes:    map[string]models.Like{},
		calls:    map[string]int{},
		failWith: map[string]error{},
	}
}

// Stores returns the DB as the full set of store interfaces.
func (d *DB) Stores() db.Stores {
	return db.Stores{Users: d, Recipes: d, Contacts: d, Likes: d}
}

// enter locks and records the call; it returns the injected failure if any.
func (d *DB) enter(name string) error {
	d.mu.Lock()
	d.calls[name]++
	if err := d.failWith[name]; err != nil {
		return err
	}
	return nil
}

func cloneUser(u models.User) *models.User {
	u.LikedRecipes = append([]string{}, u.LikedRecipes...)
	return &u
}

func cloneRecipe(r models.Recipe) *models.Recipe {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	return &r
}

func (d *DB) FindUserByID(_ context.Context, id string) (*models.User, error) {
	defer d.mu.Unlock()
	if err := d.enter("FindUserByID"); err != nil {
		return nil, err
	}
	u, ok := d.users[id]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (d *DB) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	defer d.mu.Unlock()
	if err := d.enter("FindUserByUsername"); err != nil {
		return nil, err
	}
	for _, u := range d.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, errs.ErrUserNotFound
}

func (d *DB) CreateUser(_ context.Context, user *models.User) error {
	defer d.mu.Unlock()
	if err := d.enter("CreateUser"); err != nil {
		return err
	}
	for _, u := range d.users {
		if u.Username == user.Username {
			return errs.ErrConflict
		}
	}
	if _, ok := d.users[user.ID]; ok {
		return errs.ErrConflict
	}
	if user.LikedRecipes == nil {
		user.LikedRecipes = []string{}
	}
	d.users[user.ID] = *cloneUser(*user)
	return nil
}

func (d *DB) SaveUser(_ context.Context, user *models.User) error {
	defer d.mu.Unlock()
	if err := d.enter("SaveUser"); err != nil {
		return err
	}
	stored, ok := d.users[user.ID]
	if !ok {
		return errs.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	stored.Email = user.Email
	stored.Bio = user.Bio
	stored.UpdatedAt = user.UpdatedAt
	d.users[user.ID] = stored
	return nil
}

func (d *DB) FindRecipeByID(_ context.Context, id string) (*models.Recipe, error) {
	defer d.mu.Unlock()
	if err := d.enter("FindRecipeByID"); err != nil {
		return nil, err
	}
	r, ok := d.recipes[id]
	if !ok {
		return nil, errs.ErrResourceNotFound
	}
	return cloneRecipe(r), nil
}

func (d *DB) FindRecipeByName(_ context.Context, name string) (*models.Recipe, error) {
	defer d.mu.Unlock()
	if err := d.enter("FindRecipeByName"); err != nil {
		return nil, err
	}
	for _, r := range d.sortedRecipes("oldest") {
		if r.Name == name {
			return cloneRecipe(r), nil
		}
	}
	return nil, errs.ErrResourceNotFound
}

func (d *DB) FindRecipesByIDs(_ context.Context, ids []string) ([]models.Recipe, error) {
	defer d.mu.Unlock()
	if err := d.enter("FindRecipesByIDs"); err != nil {
		return nil, err
	}
	out := []models.Recipe{}
	for _, id := range ids {
		if r, ok := d.recipes[id]; ok {
			out = append(out, *cloneRecipe(r))
		}
	}
	return out, nil
}

func (d *DB) ListRecipes(_ context.Context, q models.RecipeQuery) ([]models.Recipe, int64, error) {
	defer d.mu.Unlock()
	if err := d.enter("ListRecipes"); err != nil {
		return nil, 0, err
	}
	var matched []models.Recipe
	for _, r := range d.sortedRecipes(q.Sort) {
		if q.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, r)
	}

	total := int64(len(matched))
	out := []models.Recipe{}
	for i := q.Skip; i < total && (q.Limit <= 0 || i < q.Skip+q.Limit); i++ {
		out = append(out, *cloneRecipe(matched[i]))
	}
	return out, total, nil
}

// sortedRecipes must be called with the lock held.
func (d *DB) sortedRecipes(order string) []models.Recipe {
	all := make([]models.Recipe, 0, len(d.recipes))
	for _, r := range d.recipes {
		all = append(all, r)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		switch order {
		case "oldest":
			return a.CreatedAt.Before(b.CreatedAt)
		case "popular":
			if a.Likes != b.Likes {
				return a.Likes > b.Likes
			}
			return a.CreatedAt.After(b.CreatedAt)
		case "quickest":
			return a.CookingTime < b.CookingTime
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return all
}

func (d *DB) CreateRecipe(_ context.Context, recipe *models.Recipe) error {
	defer d.mu.Unlock()
	if err := d.enter("CreateRecipe"); err != nil {
		return err
	}
	if _, ok := d.recipes[recipe.ID]; ok {
		return errs.ErrConflict
	}
	d.recipes[recipe.ID] = *cloneRecipe(*recipe)
	return nil
}

func (d *DB) SaveRecipe(_ context.Context, recipe *models.Recipe) error {
	defer d.mu.Unlock()
	if err := d.enter("SaveRecipe"); err != nil {
		return err
	}
	stored, ok := d.recipes[recipe.ID]
	if !ok || stored.UserID != recipe.UserID {
		return errs.ErrResourceNotFound
	}
	recipe.UpdatedAt = time.Now().UTC()
	stored.Name = recipe.Name
	stored.ImageURL = recipe.ImageURL
	stored.Ingredients = append([]string(nil), recipe.Ingredients...)
	stored.Instructions = recipe.Instructions
	stored.CookingTime = recipe.CookingTime
	stored.UpdatedAt = recipe.UpdatedAt
	d.recipes[recipe.ID] = stored
	return nil
}

func (d *DB) CreateContact(_ context.Context, msg *models.ContactMessage) error {
	defer d.mu.Unlock()
	if err := d.enter("CreateContact"); err != nil {
		return err
	}
	d.contacts = append(d.contacts, *msg)
	return nil
}

func (d *DB) RecordLike(_ context.Context, userID, recipeID string) (*models.LikeResult, error) {
	defer d.mu.Unlock()
	if err := d.enter("RecordLike"); err != nil {
		return nil, err
	}
	id := models.LikeID(userID, recipeID)
	if _, ok := d.likes[id]; ok {
		return nil, errs.ErrAlreadyLiked
	}
	user, ok := d.users[userID]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	recipe, ok := d.recipes[recipeID]
	if !ok {
		return nil, errs.ErrResourceNotFound
	}

	d.likes[id] = models.Like{ID: id, UserID: userID, RecipeID: recipeID, CreatedAt: time.Now().UTC()}
	d.applyLike(userID, recipeID)
	user, recipe = d.users[userID], d.recipes[recipeID]

	return &models.LikeResult{
		RecipeID:     recipeID,
		Likes:        recipe.Likes,
		LikedRecipes: append([]string{}, user.LikedRecipes...),
	}, nil
}

func (d *DB) RepairLike(_ context.Context, userID, recipeID string) error {
	defer d.mu.Unlock()
	if err := d.enter("RepairLike"); err != nil {
		return err
	}
	d.applyLike(userID, recipeID)
	return nil
}

// applyLike adds recipeID to the user's list and bumps the counter only when
// the list did not already hold it.
func (d *DB) applyLike(userID, recipeID string) {
	user, ok := d.users[userID]
	if !ok || user.HasLiked(recipeID) {
		return
	}
	user.LikedRecipes = append(user.LikedRecipes, recipeID)
	d.users[userID] = user
	if recipe, ok := d.recipes[recipeID]; ok {
		recipe.Likes++
		d.recipes[recipeID] = recipe
	}
}

// InsertLikeRow writes only the like row, leaving the denormalised fields
// untouched. Tests use it to simulate a crash between the writes.
func (d *DB) InsertLikeRow(userID, recipeID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := models.LikeID(userID, recipeID)
	d.likes[id] = models.Like{ID: id, UserID: userID, RecipeID: recipeID, CreatedAt: time.Now().UTC()}
}

// Contacts returns a copy of the stored contact messages.
func (d *DB) Contacts() []models.ContactMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.ContactMessage(nil), d.contacts...)
}

// CallCount returns how often the named method ran.
func (d *DB) CallCount(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[name]
}

// Fail makes the named method return err until cleared with a nil error.
func (d *DB) Fail(name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failWith, name)
		return
	}
	d.failWith[name] = err
}
