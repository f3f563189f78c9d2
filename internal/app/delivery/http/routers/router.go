package routers

import (
	"fmt"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/delivery/http/controllers"
	"labtrace-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	authController *controllers.AuthController,
	orderController *controllers.OrderController,
	resultController *controllers.ResultController,
	webhookController *controllers.WebhookController,
) {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	router.Use(httprate.LimitByIP(internalConfig.App.MaxRequests, time.Second))

	router.Use(middlewares.RequestID)
	router.Use(middlewares.Logging)

	endpointPrefix := fmt.Sprintf("/%s", internalConfig.App.EndpointPrefix)
	versionPrefix := fmt.Sprintf("/%s", internalConfig.App.Version)

	router.Route(endpointPrefix, func(r chi.Router) {
		r.Route(versionPrefix, func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				attachAuthRoutes(r, middlewares, authController)
			})

			r.Route("/orders", func(r chi.Router) {
				attachOrderRoutes(r, middlewares, orderController, resultController)
			})

			r.Route("/results", func(r chi.Router) {
				attachResultRoutes(r, middlewares, resultController)
			})

			r.Route("/webhooks", func(r chi.Router) {
				attachWebhookRoutes(r, middlewares, webhookController)
			})
		})
	})
}
