package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"

	"labtrace-service/internal/pkg/dto/requests"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type AuthController struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	AuthUsecase    contracts.AuthUsecase
}

func NewAuthController(logger *zap.Logger, internalConfig *config.InternalConfig, authUsecase contracts.AuthUsecase) *AuthController {
	return &AuthController{
		Log:            logger,
		InternalConfig: internalConfig,
		AuthUsecase:    authUsecase,
	}
}

func (ctrl *AuthController) requestTimeout() time.Duration {
	timeout := time.Duration(ctrl.InternalConfig.App.RequestTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

func (ctrl *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	request := new(requests.Login)
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.Email = strings.TrimSpace(strings.ToLower(request.Email))

	err = utils.ValidateStruct(request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.AuthUsecase.Login(ctx, request)
	if err != nil {
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.LoginSuccess, response)
}

func (ctrl *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get(constvars.HeaderAuthorization)
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	err := ctrl.AuthUsecase.Logout(ctx, token)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.LogoutSuccess, nil)
}
