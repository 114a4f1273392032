// Package handler provides HTTP handlers for the gateway.
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

// ChatHandler handles the public chat endpoint.
type ChatHandler struct {
	gateway *service.Gateway
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(gw *service.Gateway, log *logger.Logger) *ChatHandler {
	return &ChatHandler{gateway: gw, logger: log}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gateway.Chat(r.Context(), &req)
	if err != nil {
		// Only authentication failures cross the transport boundary.
		if service.IsAuth(err) {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		h.logger.Error("chat request failed",
			zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
