package notify

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snowskye/lead-gateway/internal/background"
	"github.com/snowskye/lead-gateway/internal/model"
	"github.com/snowskye/lead-gateway/pkg/logger"
)

type capturePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
}

func (p *capturePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestNotifyLead(t *testing.T) {
	pub := &capturePublisher{}
	pool := background.NewPool(1, 8, logger.NewNop())
	d := New(pub, pool)

	tn := &model.Tenant{
		ID:             "tenant-1",
		Name:           "Acme Cleaning",
		ContactAddress: "owner@acme.example",
	}
	d.NotifyLead(tn, &model.Lead{
		TenantID: "tenant-1",
		Name:     "Dana",
		Contact:  "dana@example.com",
		Concern:  "office cleaning",
	})
	pool.Close()

	require.Len(t, pub.subjects, 1)
	require.Equal(t, "notify.tenant-1.lead", pub.subjects[0])

	var notice Notice
	require.NoError(t, json.Unmarshal(pub.payloads[0], &notice))
	require.Equal(t, "owner@acme.example", notice.ContactAddress)
	require.Equal(t, "New lead for Acme Cleaning", notice.Subject)
	require.Contains(t, notice.Body, "Name: Dana")
	require.Contains(t, notice.Body, "Contact: dana@example.com")
	require.Equal(t, "Dana", notice.Lead.Name)
}

func TestNotifySkippedWithoutContactAddress(t *testing.T) {
	pub := &capturePublisher{}
	pool := background.NewPool(1, 8, logger.NewNop())
	d := New(pub, pool)

	d.NotifyLead(&model.Tenant{ID: "tenant-1"}, &model.Lead{TenantID: "tenant-1"})
	pool.Close()

	require.Empty(t, pub.subjects)
}
