package profile

import (
	"context"
	"net/http"
	"strings"
	"time"

	"recipebox/db"
	"recipebox/errs"
	"recipebox/logging"
	"recipebox/models"
	"recipebox/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

type Handler struct {
	users   db.UserStore
	recipes db.RecipeStore
}

func NewHandler(users db.UserStore, recipes db.RecipeStore) *Handler {
	return &Handler{users: users, recipes: recipes}
}

// currentUser loads the caller fresh from the store.
func (h *Handler) currentUser(ctx context.Context, r *http.Request) (*models.User, error) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		return nil, errs.ErrMissingCredential
	}
	return h.users.FindUserByID(ctx, userID)
}

// GetProfile handles GET /api/user/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.currentUser(ctx, r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, user.Profile(), "", nil)
}

// EditProfile handles PUT /api/user/profile. Only email and bio can change.
func (h *Handler) EditProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.currentUser(ctx, r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	var patch models.ProfilePatch
	if err := utils.DecodeJSON(w, r, &patch); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.Bio != nil {
		user.Bio = utils.SanitizeText(*patch.Bio)
	}

	if err := h.users.SaveUser(ctx, user); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	logging.Info("profile updated", zap.String("userId", user.ID))
	utils.SendResponse(w, http.StatusOK, user.Profile(), "Profile updated", nil)
}

// GetLikedRecipes handles GET /api/user/liked
func (h *Handler) GetLikedRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.currentUser(ctx, r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	recipes := []models.Recipe{}
	if len(user.LikedRecipes) > 0 {
		if recipes, err = h.recipes.FindRecipesByIDs(ctx, user.LikedRecipes); err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
	}
	utils.SendResponse(w, http.StatusOK, recipes, "", nil)
}
