package routes

import (
	"github.com/julienschmidt/httprouter"
)

// RoutesWrapper registers every route on router.
func RoutesWrapper(router *httprouter.Router, d Deps) {
	AddHealthRoutes(router)
	AddStaticRoutes(router, d)
	AddAuthRoutes(router, d)
	AddRecipeRoutes(router, d)
	AddProfileRoutes(router, d)
	AddContactRoutes(router, d)
}
