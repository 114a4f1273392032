package model

import (
	"time"
)

// LeadSource records how a lead entered the system.
type LeadSource string

const (
	// LeadSourceCapture marks leads produced by the capture dialogue.
	LeadSourceCapture LeadSource = "capture"
	// LeadSourceDirect marks leads submitted through the lead endpoint.
	LeadSourceDirect LeadSource = "direct"
)

// Lead is a structured contact record. Immutable after creation.
type Lead struct {
	ID       string     `json:"id"`
	TenantID string     `json:"tenant_id"`
	Name     string     `json:"name,omitempty"`
	Contact  string     `json:"contact,omitempty"`
	Concern  string     `json:"concern,omitempty"`
	Message  string     `json:"message,omitempty"`
	Source   LeadSource `json:"source"`

	CreatedAt time.Time `json:"created_at"`
}
