package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/snowskye/lead-gateway/internal/middleware"
	"github.com/snowskye/lead-gateway/internal/model"
	"github.com/snowskye/lead-gateway/internal/store"
	"github.com/snowskye/lead-gateway/internal/tenant"
	"github.com/snowskye/lead-gateway/pkg/logger"
)

const defaultLeadListLimit = 100

// TenantHandler handles tenant provisioning and the dashboard API.
type TenantHandler struct {
	registry  *tenant.Registry
	store     store.Store
	jwtSecret string
	jwtExpiry time.Duration
	logger    *logger.Logger
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(reg *tenant.Registry, st store.Store, jwtSecret string, jwtExpiry time.Duration, log *logger.Logger) *TenantHandler {
	return &TenantHandler{
		registry:  reg,
		store:     st,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		logger:    log,
	}
}

// Register handles POST /api/v1/tenants
func (h *TenantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateTenantName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateSecret(req.Secret); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateContactAddress(req.ContactAddress); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.registry.Register(r.Context(), &req)
	if err != nil {
		h.logger.Error("tenant registration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to register tenant")
		return
	}

	writeJSON(w, http.StatusCreated, &model.RegisterTenantResponse{Tenant: t.Public()})
}

// Login handles POST /api/v1/login
func (h *TenantHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.registry.Authenticate(r.Context(), req.APIKey, req.Secret)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := middleware.IssueToken(h.jwtSecret, t.ID, h.jwtExpiry)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, &model.LoginResponse{Token: token, ExpiresAt: expiresAt})
}

// Update handles PUT /api/v1/tenants/me
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	var req model.UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PromptTemplate != nil {
		if err := middleware.ValidatePromptTemplate(*req.PromptTemplate); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.ContactAddress != nil {
		if err := middleware.ValidateContactAddress(*req.ContactAddress); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	t, err := h.registry.Update(r.Context(), tenantID, &req)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, t.Public())
}

// ListLeads handles GET /api/v1/leads
func (h *TenantHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	limit := defaultLeadListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	leads, err := h.store.ListLeads(r.Context(), tenantID, limit)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	writeJSON(w, http.StatusOK, &model.ListLeadsResponse{Leads: leads, Total: len(leads)})
}
