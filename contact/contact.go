package contact

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

type Handler struct {
	store db.ContactStore
}

func NewHandler(store db.ContactStore) *Handler {
	return &Handler{store: store}
}

// Submit handles POST /api/contact. Messages are write-only.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var input models.ContactInput
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	msg := &models.ContactMessage{
		ID:        utils.GetUUID(),
		Name:      utils.SanitizeText(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Message:   utils.SanitizeText(input.Message),
		CreatedAt: time.Now().UTC(),
	}
	if msg.Name == "" {
		utils.RespondWithAppError(w, r, errs.Validation("name is empty after removing markup"))
		return
	}
	if msg.Message == "" {
		utils.RespondWithAppError(w, r, errs.Validation("message is empty after removing markup"))
		return
	}
	if err := h.store.CreateContact(ctx, msg); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	logging.Info("contact message stored", zap.String("id", msg.ID))
	utils.SendResponse(w, http.StatusCreated, nil, "Message sent successfully", nil)
}
