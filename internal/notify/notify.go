// Package notify dispatches best-effort outbound lead notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/snowskye/lead-gateway/internal/background"
	"github.com/snowskye/lead-gateway/internal/model"
	natsclient "github.com/snowskye/lead-gateway/internal/nats"
)

// Notice is the outbound message consumed by delivery workers
// (email/SMS), addressed to the tenant's configured contact.
type Notice struct {
	TenantID       string     `json:"tenant_id"`
	ContactAddress string     `json:"contact_address"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body"`
	Lead           model.Lead `json:"lead"`
}

// SubjectFor returns the NATS subject notifications are published on.
func SubjectFor(tenantID string) string {
	return "notify." + tenantID + ".lead"
}

// Publisher abstracts the outbound transport.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Dispatcher publishes lead notices off the request path. Failure is
// logged by the pool and swallowed; it never rolls back the lead or the
// reply already sent.
type Dispatcher struct {
	pub  Publisher
	pool *background.Pool
}

// New creates a dispatcher over the given transport.
func New(pub Publisher, pool *background.Pool) *Dispatcher {
	return &Dispatcher{pub: pub, pool: pool}
}

// NewNATS creates a dispatcher publishing over core NATS.
func NewNATS(client *natsclient.Client, pool *background.Pool) *Dispatcher {
	return &Dispatcher{pub: client.Conn(), pool: pool}
}

// NotifyLead enqueues a notification for a completed lead.
func (d *Dispatcher) NotifyLead(tenant *model.Tenant, lead *model.Lead) {
	if tenant.ContactAddress == "" {
		return
	}

	notice := Notice{
		TenantID:       tenant.ID,
		ContactAddress: tenant.ContactAddress,
		Subject:        fmt.Sprintf("New lead for %s", tenant.Name),
		Body:           noticeBody(lead),
		Lead:           *lead,
	}

	d.pool.Submit("notify_lead", func(ctx context.Context) error {
		data, err := json.Marshal(notice)
		if err != nil {
			return fmt.Errorf("failed to marshal notice: %w", err)
		}
		if err := d.pub.Publish(SubjectFor(tenant.ID), data); err != nil {
			return fmt.Errorf("failed to publish notice: %w", err)
		}
		return nil
	})
}

func noticeBody(lead *model.Lead) string {
	var b strings.Builder
	b.WriteString("You have a new lead.\n")
	if lead.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	}
	if lead.Contact != "" {
		fmt.Fprintf(&b, "Contact: %s\n", lead.Contact)
	}
	if lead.Concern != "" {
		fmt.Fprintf(&b, "Concern: %s\n", lead.Concern)
	}
	if lead.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", lead.Message)
	}
	return b.String()
}
