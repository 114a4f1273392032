// Package service orchestrates the chat request pipeline: tenant
// resolution, admission, capture, caching, prompt composition,
// generation, and the detached side effects.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/snowskye/lead-gateway/internal/cache"
	"github.com/snowskye/lead-gateway/internal/capture"
	"github.com/snowskye/lead-gateway/internal/llm"
	"github.com/snowskye/lead-gateway/internal/model"
	"github.com/snowskye/lead-gateway/internal/prompt"
	"github.com/snowskye/lead-gateway/pkg/logger"
	"github.com/snowskye/lead-gateway/pkg/metrics"
)

// MaxMessageLength is the longest accepted chat message, in characters.
const MaxMessageLength = 1000

// Scripted replies. Every non-auth failure degrades to one of these so
// the chat surface never breaks on partial backend failure.
const (
	ReplyEmptyMessage   = "Please type a message."
	ReplyMessageTooLong = "That message is a little long. Please keep it under 1000 characters."
	ReplyThrottled      = "You're sending messages quickly. Please wait a moment and try again."
	ReplyUnavailable    = "Sorry, I'm having trouble answering right now. Please try again in a moment."
)

// TenantResolver maps a credential to its tenant.
type TenantResolver interface {
	Resolve(ctx context.Context, credential string) (*model.Tenant, error)
}

// Admitter is the per-tenant admission check.
type Admitter interface {
	Admit(tenantID string) bool
}

// ReplyCache memoizes generated replies.
type ReplyCache interface {
	Get(tenantID, normalized string) (string, bool)
	Put(tenantID, normalized, reply string)
}

// CaptureMachine runs the lead-capture dialogue.
type CaptureMachine interface {
	Step(t *model.Tenant, conversationKey, message string) capture.Result
}

// HistoryReader provides the bounded recent-turn window.
type HistoryReader interface {
	RecentTurns(ctx context.Context, tenantID, conversationKey string, limit int) ([]model.Turn, error)
}

// Recorder is the fire-and-forget persistence writer.
type Recorder interface {
	RecordTurn(turn *model.Turn)
	RecordLead(lead *model.Lead)
	RecordUsage(event *model.UsageEvent)
}

// Notifier is the fire-and-forget lead notification dispatcher.
type Notifier interface {
	NotifyLead(tenant *model.Tenant, lead *model.Lead)
}

// Deps are the gateway's collaborators.
type Deps struct {
	Tenants   TenantResolver
	Limiter   Admitter
	Cache     ReplyCache
	Capture   CaptureMachine
	History   HistoryReader
	Generator llm.Client // nil disables generation; requests get the fallback reply
	Recorder  Recorder
	Notifier  Notifier
	Logger    *logger.Logger
}

// Options are the gateway's tunables.
type Options struct {
	HistoryWindow     int
	GenerationTimeout time.Duration
	GenerationModel   string
}

// Gateway is the request-handling pipeline.
type Gateway struct {
	deps Deps
	opts Options
}

// New creates a gateway.
func New(deps Deps, opts Options) *Gateway {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = prompt.DefaultHistoryWindow
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 12 * time.Second
	}
	return &Gateway{deps: deps, opts: opts}
}

// Chat handles one inbound chat message. The returned error is non-nil
// only for authentication failures; every other outcome is a reply.
func (g *Gateway) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	// Auth precedes admission so unauthenticated traffic cannot exhaust
	// tenant quotas.
	tenant, err := g.deps.Tenants.Resolve(ctx, req.APIKey)
	if err != nil {
		return nil, newError(KindAuth, "unresolved_credential", err)
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return &model.ChatResponse{Reply: ReplyEmptyMessage}, nil
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return &model.ChatResponse{Reply: ReplyMessageTooLong}, nil
	}

	if !g.deps.Limiter.Admit(tenant.ID) {
		metrics.ThrottledTotal.WithLabelValues(tenant.ID).Inc()
		return &model.ChatResponse{Reply: ReplyThrottled}, nil
	}

	conversationKey := strings.TrimSpace(req.ConversationKey)
	if conversationKey == "" {
		// No caller-supplied key: the request is still served, but
		// capture and history get no continuity across turns.
		conversationKey = uuid.NewString()
	}

	if res := g.deps.Capture.Step(tenant, conversationKey, message); res.Handled {
		if res.Lead != nil {
			g.deps.Recorder.RecordLead(res.Lead)
			g.deps.Notifier.NotifyLead(tenant, res.Lead)
		}
		g.recordServed(tenant.ID, conversationKey, message, res.Reply)
		return &model.ChatResponse{Reply: res.Reply}, nil
	}

	if answer, ok := shortcutAnswer(tenant, message); ok {
		g.recordServed(tenant.ID, conversationKey, message, answer)
		return &model.ChatResponse{Reply: answer}, nil
	}

	// The capture machine declined the message, so no session is active
	// and a memoized reply cannot leak scripted dialogue state.
	normalized := cache.Normalize(message)
	if reply, ok := g.deps.Cache.Get(tenant.ID, normalized); ok {
		g.recordServed(tenant.ID, conversationKey, message, reply)
		return &model.ChatResponse{Reply: reply}, nil
	}

	reply, err := g.generate(ctx, tenant, conversationKey, message)
	if err != nil {
		g.deps.Logger.Warn("generation failed, serving fallback",
			zap.String("tenant_id", tenant.ID),
			zap.Error(err),
		)
		g.deps.Recorder.RecordUsage(&model.UsageEvent{TenantID: tenant.ID, CreatedAt: time.Now()})
		return &model.ChatResponse{Reply: ReplyUnavailable}, nil
	}

	g.deps.Cache.Put(tenant.ID, normalized, reply)
	g.recordServed(tenant.ID, conversationKey, message, reply)
	return &model.ChatResponse{Reply: reply}, nil
}

// SubmitLead records a lead submitted outside the chat flow.
func (g *Gateway) SubmitLead(ctx context.Context, req *model.SubmitLeadRequest) error {
	tenant, err := g.deps.Tenants.Resolve(ctx, req.APIKey)
	if err != nil {
		return newError(KindAuth, "unresolved_credential", err)
	}

	message := strings.TrimSpace(req.Message)
	if message == "" && strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.Contact) == "" {
		return newError(KindValidation, "empty_lead", nil)
	}

	createdAt := time.Now()
	if req.CreatedAt != nil && !req.CreatedAt.IsZero() {
		createdAt = *req.CreatedAt
	}

	lead := &model.Lead{
		ID:        uuid.Must(uuid.NewV7()).String(),
		TenantID:  tenant.ID,
		Name:      strings.TrimSpace(req.Name),
		Contact:   strings.TrimSpace(req.Contact),
		Message:   message,
		Source:    model.LeadSourceDirect,
		CreatedAt: createdAt,
	}

	g.deps.Recorder.RecordLead(lead)
	g.deps.Notifier.NotifyLead(tenant, lead)
	return nil
}

func (g *Gateway) generate(ctx context.Context, tenant *model.Tenant, conversationKey, message string) (string, error) {
	if g.deps.Generator == nil {
		return "", newError(KindUpstream, "generation_disabled", nil)
	}

	history, err := g.deps.History.RecentTurns(ctx, tenant.ID, conversationKey, g.opts.HistoryWindow)
	if err != nil {
		// A history outage degrades to a context-free reply.
		g.deps.Logger.Warn("history read failed",
			zap.String("tenant_id", tenant.ID),
			zap.Error(err),
		)
		history = nil
	}

	messages := prompt.Compose(tenant, history, message, g.opts.HistoryWindow)

	genCtx, cancel := context.WithTimeout(ctx, g.opts.GenerationTimeout)
	defer cancel()

	start := time.Now()
	resp, err := g.deps.Generator.Complete(genCtx, &llm.CompletionRequest{
		Model:    g.opts.GenerationModel,
		Messages: messages,
	})
	if err != nil {
		metrics.RecordGeneration(g.deps.Generator.Name(), "error", time.Since(start).Seconds(), 0, 0)
		return "", newError(KindUpstream, "generation_failed", err)
	}
	metrics.RecordGeneration(g.deps.Generator.Name(), "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", newError(KindUpstream, "empty_generation", nil)
	}
	return reply, nil
}

// recordServed enqueues the per-request side effects after the reply has
// been computed.
func (g *Gateway) recordServed(tenantID, conversationKey, message, reply string) {
	now := time.Now()
	g.deps.Recorder.RecordTurn(&model.Turn{
		ID:              uuid.Must(uuid.NewV7()).String(),
		TenantID:        tenantID,
		ConversationKey: conversationKey,
		Message:         message,
		Reply:           reply,
		CreatedAt:       now,
	})
	g.deps.Recorder.RecordUsage(&model.UsageEvent{TenantID: tenantID, CreatedAt: now})
}

func shortcutAnswer(t *model.Tenant, message string) (string, bool) {
	if len(t.Shortcuts) == 0 {
		return "", false
	}

	lower := strings.ToLower(message)
	for _, sc := range t.Shortcuts {
		for _, kw := range sc.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(lower, kw) {
				return sc.Answer, true
			}
		}
	}
	return "", false
}
