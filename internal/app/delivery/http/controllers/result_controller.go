package controllers

import (
	"context"
	"net/http"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ResultController struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	ResultUsecase  contracts.ResultUsecase
}

func NewResultController(logger *zap.Logger, internalConfig *config.InternalConfig, resultUsecase contracts.ResultUsecase) *ResultController {
	return &ResultController{
		Log:            logger,
		InternalConfig: internalConfig,
		ResultUsecase:  resultUsecase,
	}
}

func (ctrl *ResultController) requestTimeout() time.Duration {
	timeout := time.Duration(ctrl.InternalConfig.App.RequestTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

func (ctrl *ResultController) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}
	resultID := chi.URLParam(r, "resultID")

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.ResultUsecase.GetResultByID(ctx, actor, resultID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResultGetSuccess, response)
}

func (ctrl *ResultController) ListForOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.ResultUsecase.ListResultsForOrder(ctx, actor, orderID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResultListSuccess, response)
}

func (ctrl *ResultController) Review(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}
	resultID := chi.URLParam(r, "resultID")

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.ResultUsecase.Review(ctx, actor, resultID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResultReviewedSuccess, response)
}
