package auth

import (
	"context"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/dto/responses"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"
	"sync"

	"go.uber.org/zap"
)

type authUsecase struct {
	UserRepository contracts.UserRepository
	SessionService contracts.SessionService
	Log            *zap.Logger
}

var (
	authUsecaseInstance contracts.AuthUsecase
	onceAuthUsecase     sync.Once
)

func NewAuthUsecase(
	userRepository contracts.UserRepository,
	sessionService contracts.SessionService,
	logger *zap.Logger,
) contracts.AuthUsecase {
	onceAuthUsecase.Do(func() {
		authUsecaseInstance = &authUsecase{
			UserRepository: userRepository,
			SessionService: sessionService,
			Log:            logger,
		}
	})

	return authUsecaseInstance
}

func (uc *authUsecase) Login(ctx context.Context, request *requests.Login) (*responses.Login, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("authUsecase.Login called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	user, err := uc.UserRepository.FindByEmail(ctx, request.Email)
	if err != nil {
		uc.Log.Error("authUsecase.Login error finding user by email",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		return nil, exceptions.ErrInvalidEmailOrPassword(nil)
	}

	if !utils.CheckPasswordHash(request.Password, user.PasswordHash) {
		utils.LogSecurityEvent(uc.Log, "login_failed", requestID, "warning", zap.String("email", request.Email))
		return nil, exceptions.ErrInvalidEmailOrPassword(nil)
	}

	token, err := uc.SessionService.CreateSession(ctx, user)
	if err != nil {
		uc.Log.Error("authUsecase.Login error creating session",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("authUsecase.Login succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("user_id", user.ID),
	)

	return &responses.Login{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Roles:    user.Roles,
	}, nil
}

func (uc *authUsecase) Logout(ctx context.Context, token string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("authUsecase.Logout called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	if err := uc.SessionService.DestroySession(ctx, token); err != nil {
		uc.Log.Error("authUsecase.Logout error destroying session",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
