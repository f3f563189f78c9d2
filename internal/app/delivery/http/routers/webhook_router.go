package routers

import (
	"labtrace-service/internal/app/delivery/http/controllers"
	"labtrace-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachWebhookRoutes(router chi.Router, middlewares *middlewares.Middlewares, webhookController *controllers.WebhookController) {
	router.With(middlewares.LabPartnerRateLimit).Post("/lab-results", webhookController.IngestLabResult)
}
