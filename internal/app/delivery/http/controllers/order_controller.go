package controllers

import (
	"context"
	"net/http"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type OrderController struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	OrderUsecase   contracts.OrderUsecase
}

func NewOrderController(logger *zap.Logger, internalConfig *config.InternalConfig, orderUsecase contracts.OrderUsecase) *OrderController {
	return &OrderController{
		Log:            logger,
		InternalConfig: internalConfig,
		OrderUsecase:   orderUsecase,
	}
}

func (ctrl *OrderController) requestTimeout() time.Duration {
	timeout := time.Duration(ctrl.InternalConfig.App.RequestTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

func (ctrl *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}

	request := new(requests.CreateOrder)
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	err = utils.ValidateStruct(request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.OrderUsecase.CreateOrder(ctx, actor, request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.OrderCreatedSuccess, response)
}

func (ctrl *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.OrderUsecase.GetOrderByID(ctx, actor, orderID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.OrderGetSuccess, response)
}

func (ctrl *OrderController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}

	pagination := utils.BuildPaginationRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, total, err := ctrl.OrderUsecase.ListOrdersForActor(ctx, actor, pagination)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	paginationData := utils.BuildPaginationResponse(total, pagination.Page, pagination.PageSize, r.URL.Path)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, constvars.OrderListSuccess, paginationData, response)
}

func (ctrl *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}
	orderID := chi.URLParam(r, "orderID")

	request := new(requests.UpdateOrder)
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	err = utils.ValidateStruct(request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.OrderUsecase.UpdateOrder(ctx, actor, orderID, request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.OrderUpdatedSuccess, response)
}

func (ctrl *OrderController) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}
	orderID := chi.URLParam(r, "orderID")

	request := new(requests.TransitionOrder)
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	err = utils.ValidateStruct(request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.OrderUsecase.Transition(ctx, actor, orderID, models.OrderAction(request.Action))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.OrderTransitionSuccess, response)
}

func (ctrl *OrderController) PrintLabel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidSession(nil))
		return
	}
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	err := ctrl.OrderUsecase.CheckLabelPrintable(ctx, actor, orderID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.OrderLabelPrintable, nil)
}
