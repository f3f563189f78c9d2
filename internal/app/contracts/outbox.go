package contracts

import (
	"context"
	"labtrace-service/internal/app/models"
)

type OutboxRepository interface {
	FindPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	IncrementAttempts(ctx context.Context, eventID string, lastError string) error
	MarkDead(ctx context.Context, eventID string, lastError string) error
}
