package utils

import (
	"context"
	"labtrace-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// RequestIDFromContext returns the request id threaded by the middleware, or
// an empty string for background work.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	return requestID
}

func LogSecurityEvent(log *zap.Logger, event, requestID, severity string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("security_event", event),
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("severity", severity),
	}
	log.Warn("security event", append(base, fields...)...)
}

func LogBusinessEvent(log *zap.Logger, event, requestID string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("business_event", event),
		zap.String(constvars.LoggingRequestIDKey, requestID),
	}
	log.Info("business event", append(base, fields...)...)
}
