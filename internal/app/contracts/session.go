package contracts

import (
	"context"
	"labtrace-service/internal/app/models"
)

type SessionService interface {
	CreateSession(ctx context.Context, user *models.User) (token string, err error)
	ResolveSession(ctx context.Context, token string) (*models.Session, error)
	DestroySession(ctx context.Context, token string) error
}
