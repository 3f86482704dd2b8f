package recipes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"recipebox/db"
	"recipebox/errs"
	"recipebox/logging"
	"recipebox/models"
	"recipebox/mq"
	"recipebox/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	requestTimeout = 5 * time.Second
	defaultLimit   = 10
	maxLimit       = 50
)

var sortOrders = map[string]bool{
	"newest":   true,
	"oldest":   true,
	"popular":  true,
	"quickest": true,
}

type Options struct {
	// PublicURL is the externally visible base URL, used for links on
	// printed cards.
	PublicURL string
	// UploadDir is where uploaded images are written.
	UploadDir string
	Emitter   mq.Emitter
}

type Handler struct {
	recipes   db.RecipeStore
	users     db.UserStore
	emitter   mq.Emitter
	publicURL string
	uploadDir string
}

func NewHandler(recipes db.RecipeStore, users db.UserStore, opts Options) *Handler {
	h := &Handler{
		recipes:   recipes,
		users:     users,
		emitter:   opts.Emitter,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		uploadDir: opts.UploadDir,
	}
	if h.emitter == nil {
		h.emitter = mq.Nop{}
	}
	if h.uploadDir == "" {
		h.uploadDir = "static/uploads"
	}
	return h
}

type listResponse struct {
	Recipes []models.Recipe `json:"recipes"`
	Total   int64           `json:"total"`
	Page    int64           `json:"page"`
	Limit   int64           `json:"limit"`
}

// GetRecipes handles GET /api/recipes
func (h *Handler) GetRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	skip, limit := utils.ParsePagination(r, defaultLimit, maxLimit)
	sort := r.URL.Query().Get("sort")
	if !sortOrders[sort] {
		sort = "newest"
	}

	recipes, total, err := h.recipes.ListRecipes(ctx, models.RecipeQuery{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Sort:   sort,
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}

	utils.SendResponse(w, http.StatusOK, listResponse{
		Recipes: recipes,
		Total:   total,
		Page:    skip/limit + 1,
		Limit:   limit,
	}, "", nil)
}

// GetRecipe handles GET /api/recipes/:id
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recipe, err := h.recipes.FindRecipeByID(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	view := recipeView{Recipe: recipe}
	if id, ok := utils.IdentityFromContext(r.Context()); ok && id.User != nil {
		liked := id.User.HasLiked(recipe.ID)
		view.LikedByMe = &liked
	}
	utils.SendResponse(w, http.StatusOK, view, "", nil)
}

// recipeView adds the caller's like state when the request is signed in.
type recipeView struct {
	*models.Recipe
	LikedByMe *bool `json:"likedByMe,omitempty"`
}

// GetRecipeByName handles GET /api/recipes-by-name/:name
func (h *Handler) GetRecipeByName(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	name := strings.TrimSpace(ps.ByName("name"))
	if name == "" {
		utils.RespondWithAppError(w, r, errs.Validation("name is required"))
		return
	}

	recipe, err := h.recipes.FindRecipeByName(ctx, name)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, recipe, "", nil)
}

// CreateRecipe handles POST /api/recipes. The caller becomes the owner.
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithAppError(w, r, errs.ErrMissingCredential)
		return
	}

	var input models.RecipeInput
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	now := time.Now().UTC()
	recipe := &models.Recipe{
		ID:           utils.GetUUID(),
		Name:         input.Name,
		ImageURL:     strings.TrimSpace(input.ImageURL),
		Ingredients:  input.Ingredients,
		Instructions: input.Instructions,
		CookingTime:  input.CookingTime,
		UserID:       userID,
		Likes:        0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := clean(recipe); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	if err := h.recipes.CreateRecipe(ctx, recipe); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	logging.Info("recipe created", zap.String("recipeId", recipe.ID), zap.String("userId", userID))
	h.emitter.Emit(ctx, mq.Event{Type: mq.RecipeCreated, RecipeID: recipe.ID, UserID: userID})
	utils.SendResponse(w, http.StatusCreated, recipe, "Recipe posted successfully", nil)
}

// UpdateRecipe handles PUT /api/recipes/:id. Only the owner may edit, and
// only the fields present in the body change.
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithAppError(w, r, errs.ErrMissingCredential)
		return
	}

	recipe, err := h.recipes.FindRecipeByID(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := AuthorizeMutation(recipe, userID); err != nil {
		logging.Warn("recipe edit denied", zap.String("recipeId", recipe.ID), zap.String("userId", userID))
		utils.RespondWithAppError(w, r, err)
		return
	}

	var patch models.RecipePatch
	if err := utils.DecodeJSON(w, r, &patch); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	patch.Apply(recipe)
	if err := clean(recipe); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	if err := h.recipes.SaveRecipe(ctx, recipe); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	h.emitter.Emit(ctx, mq.Event{Type: mq.RecipeUpdated, RecipeID: recipe.ID, UserID: userID})
	utils.SendResponse(w, http.StatusOK, recipe, "Recipe updated successfully", nil)
}

// clean strips markup from the free-text fields and rejects a recipe that is
// left without a name, instructions or ingredients.
func clean(recipe *models.Recipe) error {
	recipe.Name = utils.SanitizeText(recipe.Name)
	recipe.Instructions = utils.SanitizeText(recipe.Instructions)
	recipe.Ingredients = utils.SanitizeAll(recipe.Ingredients)

	switch {
	case recipe.Name == "":
		return errs.Validation("name is required")
	case recipe.Instructions == "":
		return errs.Validation("instructions is required")
	case len(recipe.Ingredients) == 0:
		return errs.Validation("ingredients must not be empty")
	case recipe.CookingTime <= 0:
		return errs.Validation("cookingTime must be positive")
	}
	return nil
}
