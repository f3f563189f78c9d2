package results

import (
	"context"
	"database/sql"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/queries"
	"time"

	"github.com/goccy/go-json"
)

type resultPostgresRepository struct {
	DB *sql.DB
}

func NewResultPostgresRepository(db *sql.DB) contracts.ResultRepository {
	return &resultPostgresRepository{
		DB: db,
	}
}

func (repo *resultPostgresRepository) FindByID(ctx context.Context, resultID string) (*models.Result, error) {
	return repo.findOne(ctx, queries.GetResultByID, resultID)
}

func (repo *resultPostgresRepository) FindByExternalRef(ctx context.Context, externalRef string) (*models.Result, error) {
	return repo.findOne(ctx, queries.GetResultByExternalRef, externalRef)
}

func (repo *resultPostgresRepository) findOne(ctx context.Context, query, arg string) (*models.Result, error) {
	var result models.Result
	var rawValues []byte
	err := repo.DB.QueryRowContext(ctx, query, arg).Scan(
		&result.ID,
		&result.OrderID,
		&result.ExternalRef,
		&rawValues,
		&result.HasCriticalValues,
		&result.IsReviewed,
		&result.ReviewedBy,
		&result.ReviewedAt,
		&result.ReadyNotifiedAt,
		&result.ReceivedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	if err := json.Unmarshal(rawValues, &result.Values); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &result, nil
}

func (repo *resultPostgresRepository) FindByOrderID(ctx context.Context, orderID string) ([]models.Result, error) {
	query := queries.GetResultsByOrderID
	rows, err := repo.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		var model models.Result
		var rawValues []byte
		if err := rows.Scan(
			&model.ID,
			&model.OrderID,
			&model.ExternalRef,
			&rawValues,
			&model.HasCriticalValues,
			&model.IsReviewed,
			&model.ReviewedBy,
			&model.ReviewedAt,
			&model.ReadyNotifiedAt,
			&model.ReceivedAt,
		); err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		if err := json.Unmarshal(rawValues, &model.Values); err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		results = append(results, model)
	}

	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBIterateDataset(err)
	}

	return results, nil
}

func (repo *resultPostgresRepository) CreateWithEvent(ctx context.Context, result *models.Result, event *models.OutboxEvent) (*models.Result, error) {
	rawValues, err := json.Marshal(result.Values)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, exceptions.ErrPostgresDBBeginTx(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, queries.InsertResult,
		result.ID,
		result.OrderID,
		result.ExternalRef,
		rawValues,
		result.HasCriticalValues,
		result.IsReviewed,
		result.ReceivedAt,
	)
	if err != nil {
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}

	if err := insertOutboxEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, exceptions.ErrPostgresDBCommitTx(err)
	}
	return result, nil
}

func (repo *resultPostgresRepository) MarkReviewedWithEvent(ctx context.Context, result *models.Result, event *models.OutboxEvent) (*models.Result, error) {
	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, exceptions.ErrPostgresDBBeginTx(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, queries.MarkResultReviewed,
		result.ID,
		result.ReviewedBy,
		result.ReviewedAt,
	)
	if err != nil {
		return nil, exceptions.ErrPostgresDBUpdateData(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, exceptions.ErrPostgresDBUpdateData(err)
	}
	// The guarded update only fires on unreviewed rows; zero rows means a
	// concurrent review already committed and this one becomes a no-op.
	if affected == 0 {
		return result, nil
	}

	if err := insertOutboxEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, exceptions.ErrPostgresDBCommitTx(err)
	}
	return result, nil
}

func (repo *resultPostgresRepository) MarkReadyNotified(ctx context.Context, resultID string) (bool, error) {
	execResult, err := repo.DB.ExecContext(ctx, queries.MarkResultReadyNotified, resultID, time.Now().UTC())
	if err != nil {
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	affected, err := execResult.RowsAffected()
	if err != nil {
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	return affected > 0, nil
}

func (repo *resultPostgresRepository) ReleaseReadyNotified(ctx context.Context, resultID string) error {
	_, err := repo.DB.ExecContext(ctx, queries.ReleaseResultReadyNotified, resultID)
	if err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, event *models.OutboxEvent) error {
	_, err := tx.ExecContext(ctx, queries.InsertOutboxEvent,
		event.ID,
		event.EventType,
		event.OrderID,
		event.ResultID,
		[]byte(event.Payload),
		event.Status,
		event.Attempts,
		event.CreatedAt,
	)
	if err != nil {
		return exceptions.ErrPostgresDBInsertData(err)
	}
	return nil
}
