package models

import "time"

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	Bio          string    `json:"bio,omitempty" bson:"bio,omitempty"`
	PasswordHash string    `json:"-" bson:"password"`
	LikedRecipes []string  `json:"likedRecipes" bson:"likedRecipes"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasLiked reports whether recipeID is already in the liked set.
func (u *User) HasLiked(recipeID string) bool {
	for _, id := range u.LikedRecipes {
		if id == recipeID {
			return true
		}
	}
	return false
}

// UserProfileResponse is what the profile endpoint returns; it never carries
// the password hash.
type UserProfileResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	LikedRecipes []string  `json:"likedRecipes"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) Profile() UserProfileResponse {
	liked := u.LikedRecipes
	if liked == nil {
		liked = []string{}
	}
	return UserProfileResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Bio:          u.Bio,
		LikedRecipes: liked,
		CreatedAt:    u.CreatedAt,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfilePatch struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio   *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
}
