package routes

import (
	"fmt"
	"net/http"

	"recipebox/auth"
	"recipebox/contact"
	"recipebox/likes"
	"recipebox/middleware"
	"recipebox/profile"
	"recipebox/ratelim"
	"recipebox/recipes"

	"github.com/julienschmidt/httprouter"
)

// Deps carries the handlers and middleware the routes are built from.
type Deps struct {
	Guard       *middleware.Guard
	RateLimiter *ratelim.RateLimiter
	Auth        *auth.Handler
	Recipes     *recipes.Handler
	Likes       *likes.Handler
	Profile     *profile.Handler
	Contact     *contact.Handler
	UploadDir   string
}

// Index is the liveness probe.
func Index(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddHealthRoutes(router *httprouter.Router) {
	router.GET("/health", Index)
}

func AddStaticRoutes(router *httprouter.Router, d Deps) {
	router.ServeFiles("/static/uploads/*filepath", http.Dir(d.UploadDir))
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/auth/register", d.RateLimiter.Limit(d.Auth.Register))
	router.POST("/api/auth/login", d.RateLimiter.Limit(d.Auth.Login))
	router.POST("/api/auth/logout", d.Guard.Authenticate(d.Auth.Logout))
}

func AddRecipeRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/recipes", d.Recipes.GetRecipes)
	router.GET("/api/recipes/:id", d.Guard.OptionalAuth(d.Recipes.GetRecipe))
	router.GET("/api/recipes/:id/card.pdf", d.Recipes.PrintCard)
	router.GET("/api/recipes-by-name/:name", d.Recipes.GetRecipeByName)
	router.POST("/api/recipes", d.Guard.Authenticate(d.Recipes.CreateRecipe))
	router.PUT("/api/recipes/:id", d.Guard.Authenticate(d.Recipes.UpdateRecipe))
	router.POST("/api/recipes/:id/like", d.Guard.Authenticate(d.Likes.Like))
	router.POST("/api/uploads/recipe-image", d.Guard.Authenticate(d.Recipes.UploadImage))
}

func AddProfileRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/user/profile", d.Guard.Authenticate(d.Profile.GetProfile))
	router.PUT("/api/user/profile", d.Guard.Authenticate(d.Profile.EditProfile))
	router.GET("/api/user/liked", d.Guard.Authenticate(d.Profile.GetLikedRecipes))
}

func AddContactRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/contact", d.RateLimiter.Limit(d.Contact.Submit))
}
