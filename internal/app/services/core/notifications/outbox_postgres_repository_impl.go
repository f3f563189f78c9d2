package notifications

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/queries"
)

type outboxPostgresRepository struct {
	DB *sql.DB
}

var (
	outboxPostgresRepositoryInstance contracts.OutboxRepository
	onceNewOutboxPostgresRepository  sync.Once
)

func NewOutboxPostgresRepository(db *sql.DB) contracts.OutboxRepository {
	onceNewOutboxPostgresRepository.Do(func() {
		outboxPostgresRepositoryInstance = &outboxPostgresRepository{DB: db}
	})
	return outboxPostgresRepositoryInstance
}

func (repo *outboxPostgresRepository) FindPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	rows, err := repo.DB.QueryContext(ctx, queries.GetPendingOutboxEvents, limit)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var events []models.OutboxEvent
	for rows.Next() {
		var (
			event     models.OutboxEvent
			payload   []byte
			lastError sql.NullString
		)
		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.OrderID,
			&event.ResultID,
			&payload,
			&event.Status,
			&event.Attempts,
			&lastError,
			&event.CreatedAt,
			&event.ProcessedAt,
		)
		if err != nil {
			return nil, exceptions.ErrPostgresDBIterateDataset(err)
		}
		event.Payload = payload
		event.LastError = lastError.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBIterateDataset(err)
	}
	return events, nil
}

func (repo *outboxPostgresRepository) MarkProcessed(ctx context.Context, eventID string) error {
	_, err := repo.DB.ExecContext(ctx, queries.MarkOutboxEventProcessed, eventID, time.Now().UTC())
	if err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (repo *outboxPostgresRepository) IncrementAttempts(ctx context.Context, eventID string, lastError string) error {
	_, err := repo.DB.ExecContext(ctx, queries.IncrementOutboxEventAttempts, eventID, lastError)
	if err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (repo *outboxPostgresRepository) MarkDead(ctx context.Context, eventID string, lastError string) error {
	_, err := repo.DB.ExecContext(ctx, queries.MarkOutboxEventDead, eventID, lastError, time.Now().UTC())
	if err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}
