package cron

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/subscription-service/internal/domain"
	"github.com/kevin07696/subscription-service/internal/services/ports"
)

// MockSubscriptionService implements ports.SubscriptionService for testing
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) UpdateStatus(ctx context.Context, subscriptionID string, target domain.Status, note string) error {
	args := m.Called(ctx, subscriptionID, target, note)
	return args.Error(0)
}

func (m *MockSubscriptionService) UpdateDates(ctx context.Context, subscriptionID string, updates map[domain.DateType]time.Time) error {
	args := m.Called(ctx, subscriptionID, updates)
	return args.Error(0)
}

func (m *MockSubscriptionService) DeleteDate(ctx context.Context, subscriptionID string, dateType domain.DateType) error {
	args := m.Called(ctx, subscriptionID, dateType)
	return args.Error(0)
}

func (m *MockSubscriptionService) PaymentComplete(ctx context.Context, subscriptionID, transactionID string) error {
	args := m.Called(ctx, subscriptionID, transactionID)
	return args.Error(0)
}

func (m *MockSubscriptionService) PaymentFailed(ctx context.Context, subscriptionID string, fallback domain.Status) error {
	args := m.Called(ctx, subscriptionID, fallback)
	return args.Error(0)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, subscriptionID, note string) error {
	args := m.Called(ctx, subscriptionID, note)
	return args.Error(0)
}

func (m *MockSubscriptionService) CompletedPaymentCount(ctx context.Context, subscriptionID string) (int, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubscriptionService) FailedPaymentCount(ctx context.Context, subscriptionID string) (int, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubscriptionService) RelatedOrders(ctx context.Context, subscriptionID string) ([]*domain.Order, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockSubscriptionService) RelatedOrderIDs(ctx context.Context, subscriptionID string) ([]string, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSubscriptionService) ProcessDueRenewals(ctx context.Context, asOf time.Time, batchSize int) (*ports.RenewalBatchResult, error) {
	args := m.Called(ctx, asOf, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RenewalBatchResult), args.Error(1)
}

const testSecret = "test-secret"

func setupHandler() (*RenewalHandler, *MockSubscriptionService) {
	service := new(MockSubscriptionService)
	handler := NewRenewalHandler(service, zap.NewNop(), testSecret)
	return handler, service
}

// TestProcessRenewals_Success tests a successful sweep over the cron endpoint
func TestProcessRenewals_Success(t *testing.T) {
	handler, service := setupHandler()

	service.On("ProcessDueRenewals", mock.Anything, mock.Anything, 100).
		Return(&ports.RenewalBatchResult{Processed: 3, Succeeded: 3}, nil)

	req := httptest.NewRequest(http.MethodPost, "/cron/process-renewals", nil)
	req.Header.Set("X-Cron-Secret", testSecret)
	rec := httptest.NewRecorder()

	handler.ProcessRenewals(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ProcessRenewalsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Processed)
	assert.Equal(t, 3, resp.SuccessCount)
	assert.Equal(t, 0, resp.FailureCount)
}

// TestProcessRenewals_PartialFailure tests the 206 response for mixed outcomes
func TestProcessRenewals_PartialFailure(t *testing.T) {
	handler, service := setupHandler()

	service.On("ProcessDueRenewals", mock.Anything, mock.Anything, 100).
		Return(&ports.RenewalBatchResult{
			Processed: 2,
			Succeeded: 1,
			Failed:    1,
			Errors: []ports.RenewalError{
				{SubscriptionID: "sub-1", Error: "order subsystem unavailable"},
			},
		}, nil)

	req := httptest.NewRequest(http.MethodPost, "/cron/process-renewals", nil)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	rec := httptest.NewRecorder()

	handler.ProcessRenewals(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)

	var resp ProcessRenewalsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "sub-1")
}

// TestProcessRenewals_Unauthorized tests secret enforcement
func TestProcessRenewals_Unauthorized(t *testing.T) {
	handler, service := setupHandler()

	req := httptest.NewRequest(http.MethodPost, "/cron/process-renewals", nil)
	req.Header.Set("X-Cron-Secret", "wrong")
	rec := httptest.NewRecorder()

	handler.ProcessRenewals(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	service.AssertNotCalled(t, "ProcessDueRenewals", mock.Anything, mock.Anything, mock.Anything)
}

// TestProcessRenewals_MethodNotAllowed tests the POST-only restriction
func TestProcessRenewals_MethodNotAllowed(t *testing.T) {
	handler, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/cron/process-renewals", nil)
	req.Header.Set("X-Cron-Secret", testSecret)
	rec := httptest.NewRecorder()

	handler.ProcessRenewals(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestProcessRenewals_RequestParameters tests as-of date and batch size parsing
func TestProcessRenewals_RequestParameters(t *testing.T) {
	handler, service := setupHandler()

	expectedAsOf := time.Date(2024, 3, 1, 23, 59, 59, 999999999, time.UTC)
	service.On("ProcessDueRenewals", mock.Anything, expectedAsOf, 25).
		Return(&ports.RenewalBatchResult{}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"as_of_date": "2024-03-01",
		"batch_size": 25,
	})
	req := httptest.NewRequest(http.MethodPost, "/cron/process-renewals", bytes.NewReader(body))
	req.Header.Set("X-Cron-Secret", testSecret)
	rec := httptest.NewRecorder()

	handler.ProcessRenewals(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

// TestProcessRenewals_InvalidBatchSize tests batch size bounds
func TestProcessRenewals_InvalidBatchSize(t *testing.T) {
	handler, service := setupHandler()

	body, _ := json.Marshal(map[string]interface{}{"batch_size": 5000})
	req := httptest.NewRequest(http.MethodPost, "/cron/process-renewals", bytes.NewReader(body))
	req.Header.Set("X-Cron-Secret", testSecret)
	rec := httptest.NewRecorder()

	handler.ProcessRenewals(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "ProcessDueRenewals", mock.Anything, mock.Anything, mock.Anything)
}

// TestProcessRenewals_ServiceError tests the 500 path
func TestProcessRenewals_ServiceError(t *testing.T) {
	handler, service := setupHandler()

	service.On("ProcessDueRenewals", mock.Anything, mock.Anything, 100).
		Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodPost, "/cron/process-renewals", nil)
	req.Header.Set("X-Cron-Secret", testSecret)
	rec := httptest.NewRecorder()

	handler.ProcessRenewals(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// TestHealthCheck tests the monitoring endpoint
func TestHealthCheck(t *testing.T) {
	handler, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/cron/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
