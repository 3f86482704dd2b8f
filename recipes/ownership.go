package recipes

import (
	"recipebox/errs"
	"recipebox/models"
)

// AuthorizeMutation allows a change to recipe only when actingUserID owns it.
// The caller loads the recipe first, so a missing recipe is reported as not
// found before ownership is ever evaluated.
func AuthorizeMutation(recipe *models.Recipe, actingUserID string) error {
	if recipe == nil || recipe.UserID == "" || actingUserID == "" {
		return errs.ErrDenied
	}
	if recipe.UserID != actingUserID {
		return errs.ErrDenied
	}
	return nil
}
