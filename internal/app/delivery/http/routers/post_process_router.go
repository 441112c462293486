package routers

import (
	"mobileforms-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachPostProcessRoutes(router chi.Router, postProcessController *controllers.PostProcessController) {
	router.Post("/passes", postProcessController.RunPass)
}
