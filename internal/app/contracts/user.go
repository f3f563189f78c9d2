package contracts

import (
	"context"
	"labtrace-service/internal/app/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (userID string, err error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}
