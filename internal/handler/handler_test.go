package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snowskye/lead-gateway/internal/cache"
	"github.com/snowskye/lead-gateway/internal/capture"
	"github.com/snowskye/lead-gateway/internal/llm"
	"github.com/snowskye/lead-gateway/internal/middleware"
	"github.com/snowskye/lead-gateway/internal/model"
	"github.com/snowskye/lead-gateway/internal/ratelimit"
	"github.com/snowskye/lead-gateway/internal/service"
	"github.com/snowskye/lead-gateway/internal/store"
	"github.com/snowskye/lead-gateway/internal/tenant"
	"github.com/snowskye/lead-gateway/pkg/logger"
)

const testJWTSecret = "test-secret"

type staticGenerator struct {
	reply string
}

func (g *staticGenerator) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: g.reply}, nil
}

func (g *staticGenerator) Name() string { return "static" }

type env struct {
	registry *tenant.Registry
	records  *store.Memory
	gateway  *service.Gateway
	tenant   *model.Tenant
}

func newEnv(t *testing.T) *env {
	t.Helper()

	registry := tenant.NewRegistry(tenant.NewMemoryStore(), 0)
	tn, err := registry.Register(context.Background(), &model.RegisterTenantRequest{
		Name:           "Acme Cleaning",
		ContactAddress: "owner@acme.example",
		Category:       model.CategoryCleaning,
		Secret:         "hunter2hunter2",
	})
	require.NoError(t, err)

	records := store.NewMemory()
	gw := service.New(service.Deps{
		Tenants:   registry,
		Limiter:   ratelimit.New(100, time.Minute),
		Cache:     cache.New(time.Minute, 0),
		Capture:   capture.NewMachine(),
		History:   records,
		Generator: &staticGenerator{reply: "Happy to help!"},
		Recorder:  syncRecorder{records},
		Notifier:  noopNotifier{},
		Logger:    logger.NewNop(),
	}, service.Options{HistoryWindow: 5, GenerationTimeout: time.Second})

	return &env{registry: registry, records: records, gateway: gw, tenant: tn}
}

// syncRecorder writes records inline so tests can assert immediately.
type syncRecorder struct {
	store store.Store
}

func (r syncRecorder) RecordTurn(turn *model.Turn) {
	_ = r.store.AppendTurn(context.Background(), turn)
}

func (r syncRecorder) RecordLead(lead *model.Lead) {
	_ = r.store.AppendLead(context.Background(), lead)
}

func (r syncRecorder) RecordUsage(event *model.UsageEvent) {
	_ = r.store.AppendUsage(context.Background(), event)
}

type noopNotifier struct{}

func (noopNotifier) NotifyLead(t *model.Tenant, lead *model.Lead) {}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	e := newEnv(t)
	h := NewChatHandler(e.gateway, logger.NewNop())

	rec := postJSON(t, h.Chat, "/chat", &model.ChatRequest{
		APIKey:          e.tenant.APIKey,
		Message:         "What do you charge?",
		ConversationKey: "conv-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Happy to help!", resp.Reply)
}

func TestChatEndpointUnauthorized(t *testing.T) {
	e := newEnv(t)
	h := NewChatHandler(e.gateway, logger.NewNop())

	rec := postJSON(t, h.Chat, "/chat", &model.ChatRequest{
		APIKey:  "no-such-key",
		Message: "hello",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "invalid api key", resp.Error)
}

func TestChatEndpointBadBody(t *testing.T) {
	e := newEnv(t)
	h := NewChatHandler(e.gateway, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadEndpoint(t *testing.T) {
	e := newEnv(t)
	h := NewLeadHandler(e.gateway, logger.NewNop())

	rec := postJSON(t, h.Submit, "/lead", &model.SubmitLeadRequest{
		APIKey:  e.tenant.APIKey,
		Message: "Please call me",
		Name:    "Sam",
		Contact: "sam@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.SubmitLeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	leads, err := e.records.ListLeads(context.Background(), e.tenant.ID, 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.Equal(t, "Sam", leads[0].Name)
}

func TestLeadEndpointValidation(t *testing.T) {
	e := newEnv(t)
	h := NewLeadHandler(e.gateway, logger.NewNop())

	rec := postJSON(t, h.Submit, "/lead", &model.SubmitLeadRequest{
		APIKey: e.tenant.APIKey,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp model.SubmitLeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
}

func TestLeadEndpointUnauthorized(t *testing.T) {
	e := newEnv(t)
	h := NewLeadHandler(e.gateway, logger.NewNop())

	rec := postJSON(t, h.Submit, "/lead", &model.SubmitLeadRequest{
		APIKey:  "no-such-key",
		Message: "hello",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	e := newEnv(t)
	h := NewTenantHandler(e.registry, e.records, testJWTSecret, time.Hour, logger.NewNop())

	rec := postJSON(t, h.Register, "/api/v1/tenants", &model.RegisterTenantRequest{
		Name:           "New Business",
		ContactAddress: "new@example.com",
		Secret:         "a-long-secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp model.RegisterTenantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Tenant.APIKey)
	require.Empty(t, resp.Tenant.SecretHash)
}

func TestRegisterEndpointValidation(t *testing.T) {
	e := newEnv(t)
	h := NewTenantHandler(e.registry, e.records, testJWTSecret, time.Hour, logger.NewNop())

	rec := postJSON(t, h.Register, "/api/v1/tenants", &model.RegisterTenantRequest{
		Name:   "New Business",
		Secret: "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	e := newEnv(t)
	h := NewTenantHandler(e.registry, e.records, testJWTSecret, time.Hour, logger.NewNop())

	rec := postJSON(t, h.Login, "/api/v1/login", &model.LoginRequest{
		APIKey: e.tenant.APIKey,
		Secret: "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.True(t, resp.ExpiresAt.After(time.Now()))

	rec = postJSON(t, h.Login, "/api/v1/login", &model.LoginRequest{
		APIKey: e.tenant.APIKey,
		Secret: "wrong-secret",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func authedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUpdateEndpoint(t *testing.T) {
	e := newEnv(t)
	h := NewTenantHandler(e.registry, e.records, testJWTSecret, time.Hour, logger.NewNop())

	token, _, err := middleware.IssueToken(testJWTSecret, e.tenant.ID, time.Hour)
	require.NoError(t, err)

	template := "You are the dedicated assistant for Acme Industries."
	protected := middleware.Auth(testJWTSecret)(http.HandlerFunc(h.Update))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/api/v1/tenants/me", &model.UpdateTenantRequest{
		PromptTemplate: &template,
	}, token))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.Tenant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, template, updated.PromptTemplate)

	// No token, no access.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tenants/me", strings.NewReader("{}"))
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListLeadsEndpoint(t *testing.T) {
	e := newEnv(t)
	h := NewTenantHandler(e.registry, e.records, testJWTSecret, time.Hour, logger.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, e.records.AppendLead(context.Background(), &model.Lead{
			TenantID: e.tenant.ID,
			Name:     "Lead",
			Source:   model.LeadSourceCapture,
		}))
	}
	// A different tenant's lead must not appear.
	require.NoError(t, e.records.AppendLead(context.Background(), &model.Lead{
		TenantID: "other-tenant",
		Name:     "Other",
	}))

	token, _, err := middleware.IssueToken(testJWTSecret, e.tenant.ID, time.Hour)
	require.NoError(t, err)

	protected := middleware.Auth(testJWTSecret)(http.HandlerFunc(h.ListLeads))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/leads?limit=2", nil, token))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ListLeadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	require.Len(t, resp.Leads, 2)
	for _, lead := range resp.Leads {
		require.Equal(t, e.tenant.ID, lead.TenantID)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// Without a NATS connection the service is alive but not ready.
	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
