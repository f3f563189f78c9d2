package routers

import (
	"labtrace-service/internal/app/delivery/http/controllers"
	"labtrace-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachOrderRoutes(router chi.Router, middlewares *middlewares.Middlewares, orderController *controllers.OrderController, resultController *controllers.ResultController) {
	router.Use(middlewares.Authenticate)

	router.Post("/", orderController.Create)
	router.Get("/", orderController.List)
	router.Get("/{orderID}", orderController.Get)
	router.Put("/{orderID}", orderController.Update)
	router.Post("/{orderID}/transition", orderController.Transition)
	router.Get("/{orderID}/label", orderController.PrintLabel)
	router.Get("/{orderID}/results", resultController.ListForOrder)
}
