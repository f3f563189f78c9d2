package orders

import (
	"context"
	"database/sql"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/queries"
	"time"
)

type orderPostgresRepository struct {
	DB *sql.DB
}

func NewOrderPostgresRepository(db *sql.DB) contracts.OrderRepository {
	return &orderPostgresRepository{
		DB: db,
	}
}

func (repo *orderPostgresRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := queries.InsertOrder
	_, err := repo.DB.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.PatientID,
		order.Status,
		order.PaymentStatus,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}
	return order, nil
}

func (repo *orderPostgresRepository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	return repo.findOne(ctx, queries.GetOrderByID, orderID)
}

func (repo *orderPostgresRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return repo.findOne(ctx, queries.GetOrderByOrderNumber, orderNumber)
}

func (repo *orderPostgresRepository) findOne(ctx context.Context, query, arg string) (*models.Order, error) {
	var order models.Order
	err := repo.DB.QueryRowContext(ctx, query, arg).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.PatientID,
		&order.Status,
		&order.PaymentStatus,
		&order.Notes,
		&order.CollectedBy,
		&order.CollectedAt,
		&order.SubmittedAt,
		&order.CompletedAt,
		&order.CancelledAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &order, nil
}

func (repo *orderPostgresRepository) FindByPatientID(ctx context.Context, patientID string, limit, offset int) ([]models.Order, error) {
	query := queries.GetOrdersByPatientID
	rows, err := repo.DB.QueryContext(ctx, query, patientID, limit, offset)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var model models.Order
		if err := rows.Scan(
			&model.ID,
			&model.OrderNumber,
			&model.PatientID,
			&model.Status,
			&model.PaymentStatus,
			&model.Notes,
			&model.CollectedBy,
			&model.CollectedAt,
			&model.SubmittedAt,
			&model.CompletedAt,
			&model.CancelledAt,
			&model.CreatedAt,
			&model.UpdatedAt,
		); err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		orders = append(orders, model)
	}

	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBIterateDataset(err)
	}

	return orders, nil
}

func (repo *orderPostgresRepository) CountByPatientID(ctx context.Context, patientID string) (int, error) {
	var total int
	err := repo.DB.QueryRowContext(ctx, queries.CountOrdersByPatientID, patientID).Scan(&total)
	if err != nil {
		return 0, exceptions.ErrPostgresDBFindData(err)
	}
	return total, nil
}

func (repo *orderPostgresRepository) UpdateDetails(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := queries.UpdateOrderDetails
	order.UpdatedAt = time.Now().UTC()
	_, err := repo.DB.ExecContext(ctx, query, order.ID, order.Notes, order.UpdatedAt)
	if err != nil {
		return nil, exceptions.ErrPostgresDBUpdateData(err)
	}
	return order, nil
}

// ApplyTransition writes the already-mutated order guarded by the status it
// was loaded with and appends the lifecycle event in the same transaction.
// Zero rows updated means another writer moved the order first.
func (repo *orderPostgresRepository) ApplyTransition(ctx context.Context, order *models.Order, previousStatus models.OrderStatus, event *models.OutboxEvent) (*models.Order, error) {
	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, exceptions.ErrPostgresDBBeginTx(err)
	}
	defer tx.Rollback()

	order.UpdatedAt = time.Now().UTC()
	res, err := tx.ExecContext(ctx, queries.UpdateOrderStatusGuarded,
		order.ID,
		order.Status,
		order.PaymentStatus,
		order.CollectedBy,
		order.CollectedAt,
		order.SubmittedAt,
		order.CompletedAt,
		order.CancelledAt,
		order.UpdatedAt,
		previousStatus,
	)
	if err != nil {
		return nil, exceptions.ErrPostgresDBUpdateData(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, exceptions.ErrPostgresDBUpdateData(err)
	}
	if affected == 0 {
		return nil, exceptions.ErrOrderConcurrentUpdate(nil)
	}

	_, err = tx.ExecContext(ctx, queries.InsertOutboxEvent,
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
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, exceptions.ErrPostgresDBCommitTx(err)
	}
	return order, nil
}
