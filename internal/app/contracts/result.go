package contracts

import (
	"context"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/dto/responses"
)

type ResultRepository interface {
	FindByID(ctx context.Context, resultID string) (*models.Result, error)
	FindByExternalRef(ctx context.Context, externalRef string) (*models.Result, error)
	FindByOrderID(ctx context.Context, orderID string) ([]models.Result, error)
	// CreateWithEvent persists the result and appends the result-received
	// event in one transaction.
	CreateWithEvent(ctx context.Context, result *models.Result, event *models.OutboxEvent) (*models.Result, error)
	// MarkReviewedWithEvent flips is_reviewed and appends the result-reviewed
	// event in one transaction. The flag only ever moves false to true.
	MarkReviewedWithEvent(ctx context.Context, result *models.Result, event *models.OutboxEvent) (*models.Result, error)
	// MarkReadyNotified stamps ready_notified_at if it is still unset and
	// reports whether this call claimed the notification.
	MarkReadyNotified(ctx context.Context, resultID string) (bool, error)
	// ReleaseReadyNotified clears the stamp so a later event can claim it
	// again. Callers use it to give a failed send back to the retry loop.
	ReleaseReadyNotified(ctx context.Context, resultID string) error
}

// IngestOutcome tells the webhook caller whether the payload created a new
// result or hit an already ingested reference.
type IngestOutcome struct {
	Result    *models.Result
	Duplicate bool
}

type ResultUsecase interface {
	// Ingest verifies the signature over the raw body before anything else,
	// parses either payload shape, and persists at most one result per
	// external reference.
	Ingest(ctx context.Context, rawPayload []byte, signatureHeader string) (*IngestOutcome, error)
	Review(ctx context.Context, actor models.Actor, resultID string) (*responses.Result, error)
	GetResultByID(ctx context.Context, actor models.Actor, resultID string) (*responses.Result, error)
	ListResultsForOrder(ctx context.Context, actor models.Actor, orderID string) ([]responses.Result, error)
}
