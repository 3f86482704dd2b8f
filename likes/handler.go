package likes

import (
	"context"
	"net/http"
	"time"

	"recipebox/errs"
	"recipebox/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	guard *Guard
}

func NewHandler(guard *Guard) *Handler {
	return &Handler{guard: guard}
}

// Like handles POST /api/recipes/:id/like
func (h *Handler) Like(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithAppError(w, r, errs.ErrMissingCredential)
		return
	}

	res, err := h.guard.Apply(ctx, userID, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.SendResponse(w, http.StatusOK, res, "Recipe liked", nil)
}
