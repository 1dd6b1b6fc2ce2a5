package cron

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kevin07696/subscription-service/internal/services/ports"
	"github.com/kevin07696/subscription-service/pkg/observability"
	"github.com/kevin07696/subscription-service/pkg/timeutil"
	"go.uber.org/zap"
)

// RenewalHandler handles cron job endpoints for the due-renewal sweep
type RenewalHandler struct {
	subscriptionService ports.SubscriptionService
	logger              *zap.Logger
	cronSecret          string // Secret token for authenticating cron requests
}

// NewRenewalHandler creates a new renewal cron handler
func NewRenewalHandler(
	subscriptionService ports.SubscriptionService,
	logger *zap.Logger,
	cronSecret string,
) *RenewalHandler {
	return &RenewalHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
		cronSecret:          cronSecret,
	}
}

// ProcessRenewalsRequest represents the request body for manual renewal processing
type ProcessRenewalsRequest struct {
	AsOfDate  *string `json:"as_of_date"` // Optional: ISO date string, defaults to now
	BatchSize *int    `json:"batch_size"` // Optional: defaults to 100
}

// ProcessRenewalsResponse represents the response from renewal processing
type ProcessRenewalsResponse struct {
	Success      bool     `json:"success"`
	Processed    int      `json:"processed"`
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors,omitempty"`
	ProcessedAt  string   `json:"processed_at"`
}

// ProcessRenewals handles the POST /cron/process-renewals endpoint.
// The scheduler calls it to generate renewal orders for every active
// subscription whose next payment date has arrived.
func (h *RenewalHandler) ProcessRenewals(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Renewal cron job triggered",
		zap.String("method", r.Method),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()),
	)

	if r.Method != http.MethodPost {
		h.respondError(w, http.StatusMethodNotAllowed, "only POST method is allowed")
		return
	}

	if !h.authenticateRequest(r) {
		h.logger.Warn("Unauthorized cron request",
			zap.String("remote_addr", r.RemoteAddr),
		)
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Parse request body (optional parameters)
	var req ProcessRenewalsRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Failed to parse request body",
				zap.Error(err),
			)
			// Continue with defaults if parsing fails
		}
	}

	asOf := timeutil.Now()
	if req.AsOfDate != nil {
		parsed, err := timeutil.ParseDate("2006-01-02", *req.AsOfDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid as_of_date format: %v", err))
			return
		}
		// Sweep everything due at any point during the requested day
		asOf = timeutil.EndOfDay(parsed)
	}

	batchSize := 100
	if req.BatchSize != nil {
		if *req.BatchSize < 1 || *req.BatchSize > 1000 {
			h.respondError(w, http.StatusBadRequest, "batch_size must be between 1 and 1000")
			return
		}
		batchSize = *req.BatchSize
	}

	start := time.Now()
	result, err := h.subscriptionService.ProcessDueRenewals(r.Context(), asOf, batchSize)
	observability.RecordRenewalBatch("cron", time.Since(start).Seconds())
	if err != nil {
		h.logger.Error("Renewal processing failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "renewal processing failed")
		return
	}

	resp := ProcessRenewalsResponse{
		Success:      result.Failed == 0,
		Processed:    result.Processed,
		SuccessCount: result.Succeeded,
		FailureCount: result.Failed,
		ProcessedAt:  time.Now().Format(time.RFC3339),
	}

	if len(result.Errors) > 0 {
		resp.Errors = make([]string, len(result.Errors))
		for i, re := range result.Errors {
			resp.Errors[i] = fmt.Sprintf("%s: %s", re.SubscriptionID, re.Error)
		}
	}

	h.logger.Info("Renewal processing completed",
		zap.Int("processed", result.Processed),
		zap.Int("success", result.Succeeded),
		zap.Int("failed", result.Failed),
	)

	w.Header().Set("Content-Type", "application/json")
	if resp.Success {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusPartialContent) // 206 indicates partial success
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// authenticateRequest verifies the cron request is authorized
func (h *RenewalHandler) authenticateRequest(r *http.Request) bool {
	// Check X-Cron-Secret header
	cronSecret := r.Header.Get("X-Cron-Secret")
	if cronSecret != "" && cronSecret == h.cronSecret {
		return true
	}

	// Check Authorization header (Bearer token)
	authHeader := r.Header.Get("Authorization")
	if authHeader == "Bearer "+h.cronSecret {
		return true
	}

	// Check query parameter (less secure, for development only)
	querySecret := r.URL.Query().Get("secret")
	if querySecret != "" && querySecret == h.cronSecret {
		h.logger.Warn("Using query parameter authentication (insecure)",
			zap.String("remote_addr", r.RemoteAddr),
		)
		return true
	}

	return false
}

// respondError sends an error response
func (h *RenewalHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := map[string]interface{}{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// HealthCheck handles GET /cron/health for monitoring
func (h *RenewalHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	resp := map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}

	json.NewEncoder(w).Encode(resp)
}
