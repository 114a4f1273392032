// Package writer records turns, leads, and usage events off the request
// path. All methods are fire-and-forget: they enqueue on the background
// pool and return immediately; a storage outage degrades to records not
// being saved, never to rejected chat traffic.
package writer

import (
	"context"

	"github.com/snowskye/lead-gateway/internal/background"
	"github.com/snowskye/lead-gateway/internal/model"
	"github.com/snowskye/lead-gateway/internal/store"
	"github.com/snowskye/lead-gateway/pkg/metrics"
)

// Writer is the asynchronous persistence recorder.
type Writer struct {
	store store.Store
	pool  *background.Pool
}

// New creates a writer over the given store and pool.
func New(s store.Store, pool *background.Pool) *Writer {
	return &Writer{store: s, pool: pool}
}

// RecordTurn persists a completed exchange.
func (w *Writer) RecordTurn(turn *model.Turn) {
	w.pool.Submit("record_turn", func(ctx context.Context) error {
		return w.store.AppendTurn(ctx, turn)
	})
}

// RecordLead persists a lead.
func (w *Writer) RecordLead(lead *model.Lead) {
	w.pool.Submit("record_lead", func(ctx context.Context) error {
		if err := w.store.AppendLead(ctx, lead); err != nil {
			return err
		}
		metrics.LeadsRecordedTotal.WithLabelValues(lead.TenantID, string(lead.Source)).Inc()
		return nil
	})
}

// RecordUsage persists one served chat request.
func (w *Writer) RecordUsage(event *model.UsageEvent) {
	w.pool.Submit("record_usage", func(ctx context.Context) error {
		return w.store.AppendUsage(ctx, event)
	})
}
