package recipes

import (
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"

	"recipebox/errs"
	"recipebox/logging"
	"recipebox/mq"
	"recipebox/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	maxUploadBytes = 10 << 20
	maxImageWidth  = 1600
	thumbWidth     = 300
)

type uploadResponse struct {
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// UploadImage handles POST /api/uploads/recipe-image. The image is decoded,
// scaled down to at most maxImageWidth and stored as JPEG next to a
// thumbnail. The returned imageUrl is meant for a recipe's imageUrl field.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithAppError(w, r, errs.ErrMissingCredential)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithAppError(w, r, errs.Validation("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithAppError(w, r, errs.Validation("image file is required"))
		return
	}
	defer file.Close()

	if _, ok := utils.SupportedImageTypes[header.Header.Get("Content-Type")]; !ok {
		utils.RespondWithAppError(w, r, errs.Validation("unsupported image type"))
		return
	}

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		utils.RespondWithAppError(w, r, errs.Validation("could not decode image"))
		return
	}

	name := utils.GetUUID() + ".jpg"
	if err := h.saveImage(img, name); err != nil {
		logging.Error("save uploaded image", zap.String("userId", userID), zap.Error(err))
		utils.RespondWithAppError(w, r, err)
		return
	}

	h.emitter.Emit(r.Context(), mq.Event{Type: mq.ImageUploaded, UserID: userID, Detail: name})
	utils.SendResponse(w, http.StatusCreated, uploadResponse{
		ImageURL:     "/static/uploads/" + name,
		ThumbnailURL: "/static/uploads/thumb/" + name,
	}, "Image uploaded", nil)
}

func (h *Handler) saveImage(img image.Image, name string) error {
	thumbDir := filepath.Join(h.uploadDir, "thumb")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, filepath.Join(h.uploadDir, name), imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("save image: %w", err)
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, name), imaging.JPEGQuality(80)); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}
	return nil
}
