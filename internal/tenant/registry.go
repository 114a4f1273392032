// Package tenant resolves credentials to tenant records and owns
// tenant provisioning for the dashboard.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/snowskye/lead-gateway/internal/model"
)

// ErrNotFound is returned when a credential or tenant id does not resolve.
var ErrNotFound = errors.New("tenant not found")

// Store is the persistent tenant record store.
type Store interface {
	Create(ctx context.Context, t *model.Tenant) error
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error)
	Update(ctx context.Context, t *model.Tenant) error
}

// DefaultCacheTTL bounds how stale a resolved tenant may be.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	tenant  model.Tenant
	expires time.Time
}

// Registry resolves opaque credentials to tenants with a short-TTL
// read-through cache. The cache is invalidated on tenant mutation.
type Registry struct {
	store Store
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry // keyed by API key
}

// NewRegistry creates a registry over the given store.
func NewRegistry(store Store, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Registry{
		store: store,
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}
}

// Resolve maps a credential to its tenant. Returns ErrNotFound for
// absent or unresolvable credentials.
func (r *Registry) Resolve(ctx context.Context, credential string) (*model.Tenant, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	entry, ok := r.cache[credential]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		t := entry.tenant
		return &t, nil
	}

	t, err := r.store.GetByAPIKey(ctx, credential)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[credential] = cacheEntry{tenant: *t, expires: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	return t, nil
}

// GetByID fetches a tenant by id, bypassing the credential cache.
func (r *Registry) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	return r.store.GetByID(ctx, id)
}

// Register provisions a new tenant and its API key.
func (r *Registry) Register(ctx context.Context, req *model.RegisterTenantRequest) (*model.Tenant, error) {
	category := req.Category
	if category == "" {
		category = model.CategoryGeneric
	}
	if !model.ValidCategory(category) {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	now := time.Now()
	t := &model.Tenant{
		ID:             uuid.Must(uuid.NewV7()).String(),
		Name:           strings.TrimSpace(req.Name),
		APIKey:         uuid.NewString(),
		ContactAddress: strings.TrimSpace(req.ContactAddress),
		Category:       category,
		SecretHash:     string(hash),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Authenticate checks a dashboard login against the stored secret hash.
func (r *Registry) Authenticate(ctx context.Context, apiKey, secret string) (*model.Tenant, error) {
	t, err := r.store.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(t.SecretHash), []byte(secret)) != nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// Update applies a mutation and invalidates the credential cache entry.
func (r *Registry) Update(ctx context.Context, tenantID string, req *model.UpdateTenantRequest) (*model.Tenant, error) {
	t, err := r.store.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.PromptTemplate != nil {
		t.PromptTemplate = strings.TrimSpace(*req.PromptTemplate)
	}
	if req.Category != nil {
		if !model.ValidCategory(*req.Category) {
			return nil, fmt.Errorf("unknown category %q", *req.Category)
		}
		t.Category = *req.Category
	}
	if req.ContactAddress != nil {
		t.ContactAddress = strings.TrimSpace(*req.ContactAddress)
	}
	if req.CaptureAlways != nil {
		t.CaptureAlways = *req.CaptureAlways
	}
	if req.TriggerPhrases != nil {
		t.TriggerPhrases = req.TriggerPhrases
	}
	if req.Shortcuts != nil {
		t.Shortcuts = req.Shortcuts
	}
	t.UpdatedAt = time.Now()

	if err := r.store.Update(ctx, t); err != nil {
		return nil, err
	}

	r.mu.Lock()
	delete(r.cache, t.APIKey)
	r.mu.Unlock()

	return t, nil
}
