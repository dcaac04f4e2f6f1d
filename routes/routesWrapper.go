package routes

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func RoutesWrapper(router *httprouter.Router, d Deps) {
	router.GET("/health", Index)

	AddAuthRoutes(router, d)
	AddCatalogRoutes(router, d)
	AddCartRoutes(router, d)
	AddOrderRoutes(router, d)
	AddReviewsRoutes(router, d)
	AddFeedbackRoutes(router, d)
	AddPrescriptionRoutes(router, d)
	AddStaticRoutes(router, d)
}
