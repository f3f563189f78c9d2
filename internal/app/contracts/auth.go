package contracts

import (
	"context"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/dto/responses"
)

type AuthUsecase interface {
	Login(ctx context.Context, request *requests.Login) (*responses.Login, error)
	Logout(ctx context.Context, token string) error
}
