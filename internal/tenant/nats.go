package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/snowskye/lead-gateway/internal/model"
	natsclient "github.com/snowskye/lead-gateway/internal/nats"
)

// Bucket is the KV bucket holding tenant records.
const Bucket = "TENANTS"

// NATSStore persists tenants in a JetStream KV bucket. Two entries per
// tenant: `id.<tenantID>` holds the record, `cred.<apiKey>` indexes it
// by credential.
type NATSStore struct {
	kv jetstream.KeyValue
}

// NewNATSStore opens (or creates) the tenant KV bucket.
func NewNATSStore(ctx context.Context, client *natsclient.Client) (*NATSStore, error) {
	kv, err := client.KeyValue(ctx, Bucket)
	if err != nil {
		return nil, err
	}
	return &NATSStore{kv: kv}, nil
}

func idKey(id string) string       { return "id." + id }
func credKey(apiKey string) string { return "cred." + apiKey }

// Create stores a new tenant and its credential index.
func (s *NATSStore) Create(ctx context.Context, t *model.Tenant) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal tenant: %w", err)
	}

	if _, err := s.kv.Create(ctx, idKey(t.ID), data); err != nil {
		return fmt.Errorf("failed to store tenant: %w", err)
	}
	if _, err := s.kv.Create(ctx, credKey(t.APIKey), []byte(t.ID)); err != nil {
		return fmt.Errorf("failed to index credential: %w", err)
	}
	return nil
}

// GetByID fetches a tenant by id.
func (s *NATSStore) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	entry, err := s.kv.Get(ctx, idKey(id))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read tenant: %w", err)
	}

	var t model.Tenant
	if err := json.Unmarshal(entry.Value(), &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tenant: %w", err)
	}
	return &t, nil
}

// GetByAPIKey fetches a tenant by credential.
func (s *NATSStore) GetByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error) {
	entry, err := s.kv.Get(ctx, credKey(apiKey))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read credential index: %w", err)
	}
	return s.GetByID(ctx, string(entry.Value()))
}

// Update replaces a stored tenant.
func (s *NATSStore) Update(ctx context.Context, t *model.Tenant) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal tenant: %w", err)
	}

	if _, err := s.kv.Put(ctx, idKey(t.ID), data); err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return nil
}
