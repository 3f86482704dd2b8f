package recipes

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"recipebox/models"
	"recipebox/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// PrintCard handles GET /api/recipes/:id/card.pdf
func (h *Handler) PrintCard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recipe, err := h.recipes.FindRecipeByID(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	author := ""
	if u, err := h.users.FindUserByID(ctx, recipe.UserID); err == nil {
		author = u.Username
	}

	pdf, err := renderCard(recipe, author, h.recipeLink(recipe.ID))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=recipe-"+recipe.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *Handler) recipeLink(id string) string {
	return h.publicURL + "/api/recipes/" + id
}

func renderCard(recipe *models.Recipe, author, link string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(140, 9, tr(recipe.Name), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Arial", "I", 11)
	meta := "Cooking time: " + strconv.FormatFloat(recipe.CookingTime, 'f', -1, 64) + " min"
	if author != "" {
		meta += "  |  by " + author
	}
	meta += "  |  " + strconv.Itoa(recipe.Likes) + " likes"
	pdf.Cell(0, 8, tr(meta))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Ingredients")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 11)
	for _, ing := range recipe.Ingredients {
		pdf.MultiCell(140, 6, tr("- "+ing), "", "L", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Instructions")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(recipe.Instructions), "", "L", false)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 12, 36, 36, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
