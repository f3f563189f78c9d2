package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/responses"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"

	"go.uber.org/zap"
)

const maxWebhookBodyBytes = 1 << 20

type WebhookController struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	ResultUsecase  contracts.ResultUsecase
}

func NewWebhookController(logger *zap.Logger, internalConfig *config.InternalConfig, resultUsecase contracts.ResultUsecase) *WebhookController {
	return &WebhookController{
		Log:            logger,
		InternalConfig: internalConfig,
		ResultUsecase:  resultUsecase,
	}
}

// IngestLabResult accepts a signed lab delivery. The body is read raw because
// the signature covers the exact bytes on the wire, and replays answer 200 so
// the partner stops retrying.
func (ctrl *WebhookController) IngestLabResult(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrWebhookMalformedPayload(err))
		return
	}
	signature := r.Header.Get(constvars.HeaderLabSignature)

	timeout := time.Duration(ctrl.InternalConfig.Lab.IngestTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	outcome, err := ctrl.ResultUsecase.Ingest(ctx, body, signature)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	response := responses.IngestResult{
		ResultID:  outcome.Result.ID,
		Duplicate: outcome.Duplicate,
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResultIngestedSuccess, response)
}
