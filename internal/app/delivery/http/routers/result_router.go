package routers

import (
	"labtrace-service/internal/app/delivery/http/controllers"
	"labtrace-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachResultRoutes(router chi.Router, middlewares *middlewares.Middlewares, resultController *controllers.ResultController) {
	router.Use(middlewares.Authenticate)

	router.Get("/{resultID}", resultController.Get)
	router.Post("/{resultID}/review", resultController.Review)
}
