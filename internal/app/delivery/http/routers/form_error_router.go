package routers

import (
	"mobileforms-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachFormErrorRoutes(router chi.Router, formErrorController *controllers.FormErrorController) {
	router.Get("/", formErrorController.FindAll)
	router.Get("/{errorID}", formErrorController.FindByID)
	router.Post("/{errorID}/comments", formErrorController.Comment)
	router.Post("/{errorID}/resolve", formErrorController.Resolve)
}
