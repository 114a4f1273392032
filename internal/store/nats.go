package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/snowskye/lead-gateway/internal/model"
	natsclient "github.com/snowskye/lead-gateway/internal/nats"
)

const (
	// StreamName is the name of the records stream.
	StreamName = "RECORDS"

	// SubjectPrefix is the prefix for all record subjects.
	SubjectPrefix = "records"

	// fetchBatch bounds a single JetStream fetch.
	fetchBatch = 256
)

// NATS is a Store backed by a JetStream stream. Records are published as
// JSON to per-tenant subjects; the stream denies delete and purge so the
// log stays append-only.
type NATS struct {
	client *natsclient.Client
}

// NewNATS creates a JetStream-backed store.
func NewNATS(client *natsclient.Client) *NATS {
	return &NATS{client: client}
}

// EnsureStream ensures the records stream exists with proper configuration.
func (s *NATS) EnsureStream(ctx context.Context) error {
	js := s.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "Conversation turns, leads, and usage events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// TurnSubject returns the subject for a conversation's turns.
func TurnSubject(tenantID, conversationKey string) string {
	return fmt.Sprintf("%s.%s.turn.%s", SubjectPrefix, subjectToken(tenantID), subjectToken(conversationKey))
}

// LeadSubject returns the subject for a tenant's leads.
func LeadSubject(tenantID string) string {
	return fmt.Sprintf("%s.%s.lead", SubjectPrefix, subjectToken(tenantID))
}

// UsageSubject returns the subject for a tenant's usage events.
func UsageSubject(tenantID string) string {
	return fmt.Sprintf("%s.%s.usage", SubjectPrefix, subjectToken(tenantID))
}

// subjectToken sanitizes an identifier for use as a NATS subject token.
// Conversation keys are caller-supplied and may contain anything.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// AppendTurn publishes a turn to the records stream.
func (s *NATS) AppendTurn(ctx context.Context, turn *model.Turn) error {
	return s.publish(ctx, TurnSubject(turn.TenantID, turn.ConversationKey), turn)
}

// AppendLead publishes a lead to the records stream.
func (s *NATS) AppendLead(ctx context.Context, lead *model.Lead) error {
	return s.publish(ctx, LeadSubject(lead.TenantID), lead)
}

// AppendUsage publishes a usage event to the records stream.
func (s *NATS) AppendUsage(ctx context.Context, event *model.UsageEvent) error {
	return s.publish(ctx, UsageSubject(event.TenantID), event)
}

func (s *NATS) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if _, err := s.client.JetStream().Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish record: %w", err)
	}
	return nil
}

// RecentTurns returns up to limit turns for a conversation, oldest first.
// The stream is drained through an ephemeral consumer while only the
// trailing window is retained.
func (s *NATS) RecentTurns(ctx context.Context, tenantID, conversationKey string, limit int) ([]model.Turn, error) {
	var window []model.Turn

	err := s.drain(ctx, TurnSubject(tenantID, conversationKey), func(data []byte) {
		var turn model.Turn
		if err := json.Unmarshal(data, &turn); err != nil {
			return
		}
		window = append(window, turn)
		if limit > 0 && len(window) > limit {
			window = window[1:]
		}
	})
	if err != nil {
		return nil, err
	}
	return window, nil
}

// ListLeads returns up to limit leads for a tenant, newest first.
func (s *NATS) ListLeads(ctx context.Context, tenantID string, limit int) ([]model.Lead, error) {
	var leads []model.Lead

	err := s.drain(ctx, LeadSubject(tenantID), func(data []byte) {
		var lead model.Lead
		if err := json.Unmarshal(data, &lead); err != nil {
			return
		}
		leads = append(leads, lead)
		if limit > 0 && len(leads) > limit {
			leads = leads[1:]
		}
	})
	if err != nil {
		return nil, err
	}

	// newest first
	for i, j := 0, len(leads)-1; i < j; i, j = i+1, j-1 {
		leads[i], leads[j] = leads[j], leads[i]
	}
	return leads, nil
}

// drain reads every message on a filter subject through an ephemeral
// consumer and hands the payloads to fn in stream order.
func (s *NATS) drain(ctx context.Context, filterSubject string, fn func(data []byte)) error {
	js := s.client.JetStream()

	consumer, err := js.CreateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: filterSubject,
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	for {
		info, err := consumer.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to read consumer info: %w", err)
		}
		if info.NumPending == 0 {
			return nil
		}

		batch, err := consumer.Fetch(fetchBatch, jetstream.FetchMaxWait(2*time.Second))
		if err != nil {
			return fmt.Errorf("failed to fetch records: %w", err)
		}

		received := 0
		for msg := range batch.Messages() {
			fn(msg.Data())
			received++
		}
		if batch.Error() != nil {
			return fmt.Errorf("batch error: %w", batch.Error())
		}
		if received == 0 {
			return nil
		}
	}
}
