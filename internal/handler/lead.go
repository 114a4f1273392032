package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/snowskye/lead-gateway/internal/middleware"
	"github.com/snowskye/lead-gateway/internal/model"
	"github.com/snowskye/lead-gateway/internal/service"
	"github.com/snowskye/lead-gateway/pkg/logger"
)

// LeadHandler handles out-of-chat lead submission.
type LeadHandler struct {
	gateway *service.Gateway
	logger  *logger.Logger
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(gw *service.Gateway, log *logger.Logger) *LeadHandler {
	return &LeadHandler{gateway: gw, logger: log}
}

// Submit handles POST /lead
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &model.SubmitLeadResponse{Success: false})
		return
	}

	if err := h.gateway.SubmitLead(r.Context(), &req); err != nil {
		switch {
		case service.IsAuth(err):
			writeError(w, http.StatusUnauthorized, "invalid api key")
		case service.IsValidation(err):
			writeJSON(w, http.StatusBadRequest, &model.SubmitLeadResponse{Success: false})
		default:
			h.logger.Error("lead submission failed",
				zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, &model.SubmitLeadResponse{Success: false})
		}
		return
	}

	writeJSON(w, http.StatusOK, &model.SubmitLeadResponse{Success: true})
}
