package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/responses"
	"labtrace-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockResultUsecase struct {
	mock.Mock
}

func (m *MockResultUsecase) Ingest(ctx context.Context, rawPayload []byte, signatureHeader string) (*contracts.IngestOutcome, error) {
	args := m.Called(ctx, rawPayload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contracts.IngestOutcome), args.Error(1)
}

func (m *MockResultUsecase) Review(ctx context.Context, actor models.Actor, resultID string) (*responses.Result, error) {
	args := m.Called(ctx, actor, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.Result), args.Error(1)
}

func (m *MockResultUsecase) GetResultByID(ctx context.Context, actor models.Actor, resultID string) (*responses.Result, error) {
	args := m.Called(ctx, actor, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.Result), args.Error(1)
}

func (m *MockResultUsecase) ListResultsForOrder(ctx context.Context, actor models.Actor, orderID string) ([]responses.Result, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]responses.Result), args.Error(1)
}

func newWebhookController(usecase contracts.ResultUsecase) *WebhookController {
	internalConfig := &config.InternalConfig{}
	internalConfig.Lab.IngestTimeoutInSeconds = 5
	return NewWebhookController(zap.NewNop(), internalConfig, usecase)
}

func TestIngestLabResultEndpoint(t *testing.T) {
	mockUsecase := new(MockResultUsecase)
	controller := newWebhookController(mockUsecase)

	body := []byte(`{"order_number":"LAB-20260110-123456","external_ref":"EXT-1","values":[{"code":"K","value":4.2}]}`)
	outcome := &contracts.IngestOutcome{Result: &models.Result{ID: "result-1"}}
	mockUsecase.On("Ingest", mock.Anything, body, "sig-hex").Return(outcome, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lab-results", bytes.NewReader(body))
	req.Header.Set(constvars.HeaderLabSignature, "sig-hex")
	rec := httptest.NewRecorder()

	controller.IngestLabResult(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response responses.ResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Success)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "result-1", data["result_id"])
	assert.Equal(t, false, data["duplicate"])
	mockUsecase.AssertExpectations(t)
}

func TestIngestLabResultEndpointDuplicate(t *testing.T) {
	mockUsecase := new(MockResultUsecase)
	controller := newWebhookController(mockUsecase)

	body := []byte(`{"order_number":"LAB-20260110-123456","external_ref":"EXT-1","values":[{"code":"K","value":4.2}]}`)
	outcome := &contracts.IngestOutcome{Result: &models.Result{ID: "result-1"}, Duplicate: true}
	mockUsecase.On("Ingest", mock.Anything, body, "sig-hex").Return(outcome, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lab-results", bytes.NewReader(body))
	req.Header.Set(constvars.HeaderLabSignature, "sig-hex")
	rec := httptest.NewRecorder()

	controller.IngestLabResult(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "replays answer 200 so the partner stops retrying")
	var response responses.ResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["duplicate"])
}

func TestIngestLabResultEndpointBadSignature(t *testing.T) {
	mockUsecase := new(MockResultUsecase)
	controller := newWebhookController(mockUsecase)

	body := []byte(`{"order_number":"LAB-20260110-123456"}`)
	mockUsecase.On("Ingest", mock.Anything, body, "bad-sig").Return(nil, exceptions.ErrWebhookSignatureInvalid(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lab-results", bytes.NewReader(body))
	req.Header.Set(constvars.HeaderLabSignature, "bad-sig")
	rec := httptest.NewRecorder()

	controller.IngestLabResult(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var response responses.ResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Success)
}
