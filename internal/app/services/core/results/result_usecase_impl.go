package results

import (
	"bytes"
	"context"
	"fmt"
	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/app/services/core/authz"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/dto/responses"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type resultUsecase struct {
	ResultRepository contracts.ResultRepository
	OrderRepository  contracts.OrderRepository
	OrderUsecase     contracts.OrderUsecase
	LockerService    contracts.LockerService
	PayloadArchive   contracts.PayloadArchive
	AuthzEngine      *authz.Engine
	InternalConfig   *config.InternalConfig
	Log              *zap.Logger
}

var (
	resultUsecaseInstance contracts.ResultUsecase
	onceResultUsecase     sync.Once
)

func NewResultUsecase(
	resultRepository contracts.ResultRepository,
	orderRepository contracts.OrderRepository,
	orderUsecase contracts.OrderUsecase,
	lockerService contracts.LockerService,
	payloadArchive contracts.PayloadArchive,
	authzEngine *authz.Engine,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ResultUsecase {
	onceResultUsecase.Do(func() {
		resultUsecaseInstance = &resultUsecase{
			ResultRepository: resultRepository,
			OrderRepository:  orderRepository,
			OrderUsecase:     orderUsecase,
			LockerService:    lockerService,
			PayloadArchive:   payloadArchive,
			AuthzEngine:      authzEngine,
			InternalConfig:   internalConfig,
			Log:              logger,
		}
	})

	return resultUsecaseInstance
}

// Ingest is the whole inbound pipeline for one webhook delivery. The
// signature is verified over the raw body before the payload is parsed or any
// state is touched; everything after the verified parse runs under a
// per-reference lock so retried deliveries cannot race each other.
func (uc *resultUsecase) Ingest(ctx context.Context, rawPayload []byte, signatureHeader string) (*contracts.IngestOutcome, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("resultUsecase.Ingest called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	if !utils.VerifyHMACSignature(rawPayload, uc.InternalConfig.Lab.WebhookSecret, signatureHeader) {
		utils.LogSecurityEvent(uc.Log, "webhook_signature_invalid", requestID, "critical")
		return nil, exceptions.ErrWebhookSignatureInvalid(nil)
	}

	request, contentType, err := parsePayload(rawPayload)
	if err != nil {
		return nil, exceptions.ErrWebhookMalformedPayload(err)
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrWebhookMalformedPayload(err)
	}

	order, err := uc.OrderRepository.FindByOrderNumber(ctx, request.OrderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrIngestionOrderNotFound(nil, request.ExternalRef)
	}

	lockKey := fmt.Sprintf(constvars.RedisIngestLockKeyFormat, request.ExternalRef)
	lockTTL := time.Duration(uc.InternalConfig.Lab.IngestLockTTLInSeconds) * time.Second
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrIngestionLockNotAcquired(nil)
	}
	defer func() {
		if unlockErr := uc.LockerService.Unlock(ctx, lockKey, lockValue); unlockErr != nil {
			uc.Log.Warn("resultUsecase.Ingest failed releasing lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(unlockErr),
			)
		}
	}()

	existing, err := uc.ResultRepository.FindByExternalRef(ctx, request.ExternalRef)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		uc.Log.Info("resultUsecase.Ingest duplicate reference, returning existing result",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String("external_ref", request.ExternalRef),
		)
		return &contracts.IngestOutcome{Result: existing, Duplicate: true}, nil
	}

	values := make([]models.ResultValue, 0, len(request.Values))
	for _, v := range request.Values {
		values = append(values, models.ResultValue{
			Code:    v.Code,
			Name:    v.Name,
			Value:   v.Value,
			Unit:    v.Unit,
			RefLow:  v.RefLow,
			RefHigh: v.RefHigh,
		})
	}
	evaluated, hasCritical := EvaluateValues(values)

	result := &models.Result{
		ID:                uuid.NewString(),
		OrderID:           order.ID,
		ExternalRef:       request.ExternalRef,
		Values:            evaluated,
		HasCriticalValues: hasCritical,
		IsReviewed:        false,
		ReceivedAt:        time.Now().UTC(),
	}

	event, err := buildResultEvent(models.EventResultReceived, result)
	if err != nil {
		return nil, err
	}

	created, err := uc.ResultRepository.CreateWithEvent(ctx, result, event)
	if err != nil {
		uc.Log.Error("resultUsecase.Ingest error persisting result",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String("external_ref", request.ExternalRef),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "result_ingested", requestID,
		zap.String("result_id", created.ID),
		zap.String("order_id", order.ID),
		zap.Bool("has_critical_values", created.HasCriticalValues),
	)

	// Archival and order completion run after the commit; neither failure
	// unwinds the already-persisted result.
	if uc.PayloadArchive != nil {
		if archiveErr := uc.PayloadArchive.ArchivePayload(ctx, request.ExternalRef, contentType, rawPayload); archiveErr != nil {
			uc.Log.Warn("resultUsecase.Ingest failed archiving payload",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(archiveErr),
			)
		}
	}

	if order.Status == models.OrderStatusSubmittedToLab {
		if _, completeErr := uc.OrderUsecase.Transition(ctx, models.SystemActor, order.ID, models.OrderActionComplete); completeErr != nil {
			uc.Log.Warn("resultUsecase.Ingest failed completing order",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String("order_id", order.ID),
				zap.Error(completeErr),
			)
		}
	}

	return &contracts.IngestOutcome{Result: created, Duplicate: false}, nil
}

// Review flips the gate irreversibly. A second review of the same result is a
// no-op, not an error.
func (uc *resultUsecase) Review(ctx context.Context, actor models.Actor, resultID string) (*responses.Result, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("resultUsecase.Review called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("result_id", resultID),
	)

	lockKey := fmt.Sprintf(constvars.RedisResultLockKeyFormat, resultID)
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, 15*time.Second)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrIngestionLockNotAcquired(nil)
	}
	defer func() {
		_ = uc.LockerService.Unlock(ctx, lockKey, lockValue)
	}()

	result, err := uc.ResultRepository.FindByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, exceptions.ErrResultNotFound(nil)
	}

	if !uc.AuthzEngine.AllowResultAction(actor, authz.ActionReviewResult, result, nil) {
		utils.LogSecurityEvent(uc.Log, "review_denied", requestID, "warning",
			zap.String("result_id", resultID),
			zap.String("actor_id", actor.ID),
		)
		return nil, exceptions.ErrNotAuthorized(nil)
	}

	if result.IsReviewed {
		return buildResultResponse(result), nil
	}

	now := time.Now().UTC()
	actorID := actor.ID
	result.IsReviewed = true
	result.ReviewedBy = &actorID
	result.ReviewedAt = &now

	event, err := buildResultEvent(models.EventResultReviewed, result)
	if err != nil {
		return nil, err
	}

	reviewed, err := uc.ResultRepository.MarkReviewedWithEvent(ctx, result, event)
	if err != nil {
		uc.Log.Error("resultUsecase.Review error marking result reviewed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String("result_id", resultID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "result_reviewed", requestID,
		zap.String("result_id", reviewed.ID),
		zap.Bool("has_critical_values", reviewed.HasCriticalValues),
	)

	return buildResultResponse(reviewed), nil
}

func (uc *resultUsecase) GetResultByID(ctx context.Context, actor models.Actor, resultID string) (*responses.Result, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Debug("resultUsecase.GetResultByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("result_id", resultID),
	)

	result, err := uc.ResultRepository.FindByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, exceptions.ErrResultNotFound(nil)
	}

	order, err := uc.OrderRepository.FindByID(ctx, result.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrResultNotFound(nil)
	}

	if !uc.AuthzEngine.AllowResultAction(actor, authz.ActionViewResult, result, order) {
		return nil, exceptions.ErrNotAuthorized(nil)
	}

	return buildResultResponse(result), nil
}

func (uc *resultUsecase) ListResultsForOrder(ctx context.Context, actor models.Actor, orderID string) ([]responses.Result, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Debug("resultUsecase.ListResultsForOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("order_id", orderID),
	)

	order, err := uc.OrderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrOrderNotFound(nil)
	}

	if !uc.AuthzEngine.AllowOrderAction(actor, authz.ActionViewOrder, order) {
		return nil, exceptions.ErrNotAuthorized(nil)
	}

	results, err := uc.ResultRepository.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	visible := make([]responses.Result, 0, len(results))
	for i := range results {
		if !uc.AuthzEngine.AllowResultAction(actor, authz.ActionViewResult, &results[i], order) {
			continue
		}
		visible = append(visible, *buildResultResponse(&results[i]))
	}
	return visible, nil
}

// parsePayload accepts the structured JSON shape or an HL7 ORU message. It
// sniffs the body rather than trusting a content-type header.
func parsePayload(rawPayload []byte) (*requests.LabResultWebhook, string, error) {
	trimmed := bytes.TrimSpace(rawPayload)
	if len(trimmed) == 0 {
		return nil, "", fmt.Errorf("empty payload")
	}

	if trimmed[0] == '{' {
		request := new(requests.LabResultWebhook)
		if err := json.Unmarshal(trimmed, request); err != nil {
			return nil, "", err
		}
		return request, constvars.MIMEApplicationJSON, nil
	}

	if bytes.HasPrefix(trimmed, []byte("MSH")) {
		request, err := ParseHL7ORU(trimmed)
		if err != nil {
			return nil, "", err
		}
		return request, constvars.MIMEApplicationHL7, nil
	}

	return nil, "", fmt.Errorf("unrecognized payload shape")
}

func buildResultEvent(eventType models.OutboxEventType, result *models.Result) (*models.OutboxEvent, error) {
	payload, err := json.Marshal(models.ResultEventPayload{
		ResultID:          result.ID,
		OrderID:           result.OrderID,
		ExternalRef:       result.ExternalRef,
		HasCriticalValues: result.HasCriticalValues,
	})
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	resultID := result.ID
	return &models.OutboxEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		OrderID:   result.OrderID,
		ResultID:  &resultID,
		Payload:   payload,
		Status:    models.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func buildResultResponse(result *models.Result) *responses.Result {
	return &responses.Result{
		ID:                result.ID,
		OrderID:           result.OrderID,
		ExternalRef:       result.ExternalRef,
		Values:            result.Values,
		HasCriticalValues: result.HasCriticalValues,
		IsReviewed:        result.IsReviewed,
		ReviewedBy:        result.ReviewedBy,
		ReviewedAt:        result.ReviewedAt,
		ReceivedAt:        result.ReceivedAt,
	}
}
