package model

import (
	"time"
)

// ChatRequest is the payload sent by the embedded widget.
type ChatRequest struct {
	APIKey          string `json:"api_key"`
	Message         string `json:"message"`
	ConversationKey string `json:"conversation_key,omitempty"`
}

// ChatResponse carries the reply shown to the end user. Every outcome
// except an authentication failure is expressed here.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// SubmitLeadRequest is the payload for out-of-chat lead submission.
type SubmitLeadRequest struct {
	APIKey    string     `json:"api_key"`
	Message   string     `json:"message"`
	Name      string     `json:"name,omitempty"`
	Contact   string     `json:"contact,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// SubmitLeadResponse reports whether the lead was accepted.
type SubmitLeadResponse struct {
	Success bool `json:"success"`
}

// RegisterTenantRequest creates a tenant and provisions its API key.
type RegisterTenantRequest struct {
	Name           string   `json:"name"`
	ContactAddress string   `json:"contact_address"`
	Category       Category `json:"category,omitempty"`
	Secret         string   `json:"secret"`
}

// RegisterTenantResponse returns the provisioned tenant including its API key.
type RegisterTenantResponse struct {
	Tenant Tenant `json:"tenant"`
}

// LoginRequest authenticates a tenant for the dashboard.
type LoginRequest struct {
	APIKey string `json:"api_key"`
	Secret string `json:"secret"`
}

// LoginResponse carries the dashboard bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateTenantRequest mutates tenant prompt configuration. Nil fields
// are left unchanged.
type UpdateTenantRequest struct {
	PromptTemplate *string    `json:"prompt_template,omitempty"`
	Category       *Category  `json:"category,omitempty"`
	ContactAddress *string    `json:"contact_address,omitempty"`
	CaptureAlways  *bool      `json:"capture_always,omitempty"`
	TriggerPhrases []string   `json:"trigger_phrases,omitempty"`
	Shortcuts      []Shortcut `json:"shortcuts,omitempty"`
}

// ListLeadsResponse is the dashboard lead listing.
type ListLeadsResponse struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
}
