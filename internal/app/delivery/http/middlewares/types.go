package middlewares

import (
	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/services/shared/ratelimiter"

	"go.uber.org/zap"
)

type Middlewares struct {
	SessionService  contracts.SessionService
	ResourceLimiter *ratelimiter.ResourceLimiter
	InternalConfig  *config.InternalConfig
	Log             *zap.Logger
}

func NewMiddlewares(
	sessionService contracts.SessionService,
	resourceLimiter *ratelimiter.ResourceLimiter,
	internalConfig *config.InternalConfig,
	log *zap.Logger,
) *Middlewares {
	return &Middlewares{
		SessionService:  sessionService,
		ResourceLimiter: resourceLimiter,
		InternalConfig:  internalConfig,
		Log:             log,
	}
}
