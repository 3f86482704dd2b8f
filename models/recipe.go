package models

import "time"

type Recipe struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	ImageURL     string    `json:"imageUrl" bson:"imageUrl"`
	Ingredients  []string  `json:"ingredients" bson:"ingredients"`
	Instructions string    `json:"instructions" bson:"instructions"`
	CookingTime  float64   `json:"cookingTime" bson:"cookingTime"` // minutes
	UserID       string    `json:"userId" bson:"userId"`
	Likes        int       `json:"likes" bson:"likes"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RecipeInput is the body of a create request.
type RecipeInput struct {
	Name         string   `json:"name" validate:"required,max=200"`
	ImageURL     string   `json:"imageUrl" validate:"required,max=2048"`
	Ingredients  []string `json:"ingredients" validate:"required,min=1,dive,required,max=500"`
	Instructions string   `json:"instructions" validate:"required"`
	CookingTime  float64  `json:"cookingTime" validate:"gt=0"`
}

// RecipePatch is the body of an update request. Absent fields keep their
// stored value.
type RecipePatch struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	ImageURL     *string   `json:"imageUrl,omitempty" validate:"omitempty,min=1,max=2048"`
	Ingredients  *[]string `json:"ingredients,omitempty" validate:"omitempty,min=1,dive,required,max=500"`
	Instructions *string   `json:"instructions,omitempty" validate:"omitempty,min=1"`
	CookingTime  *float64  `json:"cookingTime,omitempty" validate:"omitempty,gt=0"`
}

// Apply copies the set fields of p onto r.
func (p RecipePatch) Apply(r *Recipe) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	if p.Ingredients != nil {
		r.Ingredients = append([]string(nil), (*p.Ingredients)...)
	}
	if p.Instructions != nil {
		r.Instructions = *p.Instructions
	}
	if p.CookingTime != nil {
		r.CookingTime = *p.CookingTime
	}
}

// RecipeQuery drives the list endpoint.
type RecipeQuery struct {
	Search string
	Sort   string
	Skip   int64
	Limit  int64
}
