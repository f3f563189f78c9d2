package session

import (
	"context"
	"encoding/json"
	"fmt"
	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"
	"time"

	"github.com/google/uuid"
)

type sessionService struct {
	RedisRepository contracts.RedisRepository
	InternalConfig  *config.InternalConfig
}

func NewSessionService(redisRepository contracts.RedisRepository, internalConfig *config.InternalConfig) contracts.SessionService {
	return &sessionService{
		RedisRepository: redisRepository,
		InternalConfig:  internalConfig,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, user *models.User) (string, error) {
	sessionModel := models.Session{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Roles:    user.Roles,
	}
	sessionData, err := json.Marshal(sessionModel)
	if err != nil {
		return "", exceptions.ErrInvalidSession(err)
	}

	sessionID := uuid.NewString()
	sessionTTL := time.Duration(s.InternalConfig.JWT.ExpTimeInHour) * time.Hour
	key := fmt.Sprintf(constvars.RedisSessionKeyFormat, sessionID)
	if err := s.RedisRepository.Set(ctx, key, sessionData, sessionTTL); err != nil {
		return "", err
	}

	return utils.GenerateSessionJWT(sessionID, s.InternalConfig.JWT.Secret, s.InternalConfig.JWT.ExpTimeInHour)
}

func (s *sessionService) ResolveSession(ctx context.Context, token string) (*models.Session, error) {
	sessionID, err := utils.ParseSessionJWT(token, s.InternalConfig.JWT.Secret)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf(constvars.RedisSessionKeyFormat, sessionID)
	sessionData, err := s.RedisRepository.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if sessionData == "" {
		return nil, exceptions.ErrInvalidSession(nil)
	}

	sessionModel := new(models.Session)
	if err := json.Unmarshal([]byte(sessionData), sessionModel); err != nil {
		return nil, exceptions.ErrInvalidSession(err)
	}
	return sessionModel, nil
}

func (s *sessionService) DestroySession(ctx context.Context, token string) error {
	sessionID, err := utils.ParseSessionJWT(token, s.InternalConfig.JWT.Secret)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(constvars.RedisSessionKeyFormat, sessionID)
	return s.RedisRepository.Delete(ctx, key)
}
