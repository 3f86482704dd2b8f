package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"recipebox/errs"
	"recipebox/logging"
	"recipebox/models"
	"recipebox/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

type tokenResponse struct {
	Token     string                     `json:"token"`
	ExpiresAt time.Time                  `json:"expiresAt"`
	User      models.UserProfileResponse `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var input models.RegisterInput
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           utils.GetUUID(),
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		LikedRecipes: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index catches races; this lookup gives the common case a clean answer.
	if _, err := h.users.FindUserByUsername(ctx, user.Username); err == nil {
		utils.RespondWithAppError(w, r, errs.ErrConflict)
		return
	} else if !errors.Is(err, errs.ErrUserNotFound) {
		utils.RespondWithAppError(w, r, err)
		return
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user, "Registration successful")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var input models.LoginInput
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	user, err := h.users.FindUserByUsername(ctx, input.Username)
	if errors.Is(err, errs.ErrUserNotFound) {
		utils.RespondWithAppError(w, r, errs.ErrInvalidCredentials)
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if !CheckPassword(user.PasswordHash, input.Password) {
		utils.RespondWithAppError(w, r, errs.ErrInvalidCredentials)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user, "Login successful")
}

// Logout revokes the presented token until it would have expired anyway.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondWithAppError(w, r, errs.ErrMissingCredential)
		return
	}

	if h.revoker != nil {
		if err := h.revoker.Revoke(r.Context(), id.TokenID, time.Until(id.ExpiresAt)); err != nil {
			logging.Error("revoke token", zap.String("userId", id.UserID), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Logout failed")
			return
		}
	}

	utils.SendResponse(w, http.StatusOK, nil, "User logged out", nil)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User, msg string) {
	token, claims, err := h.codec.Issue(user.ID, user.Username)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	logging.Info(msg, zap.String("userId", user.ID))
	utils.SendResponse(w, status, tokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user.Profile(),
	}, msg, nil)
}
