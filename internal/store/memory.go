package store

import (
	"context"
	"sync"

	"github.com/snowskye/lead-gateway/internal/model"
)

// Memory is an in-memory Store for single-process deployments and tests.
type Memory struct {
	mu    sync.RWMutex
	turns map[string][]model.Turn // keyed by tenantID + "/" + conversationKey
	leads map[string][]model.Lead // keyed by tenantID
	usage map[string]int          // keyed by tenantID
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		turns: make(map[string][]model.Turn),
		leads: make(map[string][]model.Lead),
		usage: make(map[string]int),
	}
}

// AppendTurn records a completed exchange.
func (m *Memory) AppendTurn(ctx context.Context, turn *model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := turn.TenantID + "/" + turn.ConversationKey
	m.turns[key] = append(m.turns[key], *turn)
	return nil
}

// AppendLead records a lead.
func (m *Memory) AppendLead(ctx context.Context, lead *model.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leads[lead.TenantID] = append(m.leads[lead.TenantID], *lead)
	return nil
}

// AppendUsage records one served request.
func (m *Memory) AppendUsage(ctx context.Context, event *model.UsageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.usage[event.TenantID]++
	return nil
}

// RecentTurns returns up to limit turns for a conversation, oldest first.
func (m *Memory) RecentTurns(ctx context.Context, tenantID, conversationKey string, limit int) ([]model.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.turns[tenantID+"/"+conversationKey]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}

	out := make([]model.Turn, len(all))
	copy(out, all)
	return out, nil
}

// ListLeads returns up to limit leads for a tenant, newest first.
func (m *Memory) ListLeads(ctx context.Context, tenantID string, limit int) ([]model.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.leads[tenantID]
	out := make([]model.Lead, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// UsageCount reports the recorded usage events for a tenant.
func (m *Memory) UsageCount(tenantID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage[tenantID]
}
