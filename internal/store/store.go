// Package store persists the gateway's append-only records: conversation
// turns, leads, and usage events. Writes are append-only; the only reads
// are the bounded recent-turn window and the dashboard lead listing.
package store

import (
	"context"

	"github.com/snowskye/lead-gateway/internal/model"
)

// Store is the backing record log. The in-memory implementation serves
// single-process deployments and tests; the JetStream implementation is
// the durable default.
type Store interface {
	// AppendTurn records a completed user/assistant exchange.
	AppendTurn(ctx context.Context, turn *model.Turn) error

	// AppendLead records a captured or submitted lead.
	AppendLead(ctx context.Context, lead *model.Lead) error

	// AppendUsage records one served chat request.
	AppendUsage(ctx context.Context, event *model.UsageEvent) error

	// RecentTurns returns up to limit turns for a conversation, oldest first.
	RecentTurns(ctx context.Context, tenantID, conversationKey string, limit int) ([]model.Turn, error)

	// ListLeads returns up to limit leads for a tenant, newest first.
	ListLeads(ctx context.Context, tenantID string, limit int) ([]model.Lead, error)
}
