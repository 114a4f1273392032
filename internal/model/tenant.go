// Package model defines data structures for the lead gateway.
package model

import (
	"time"
)

// Category tags a tenant's line of business and selects the default
// system template when no custom one is configured.
type Category string

const (
	CategoryGeneric     Category = "generic"
	CategoryCleaning    Category = "cleaning"
	CategoryLandscaping Category = "landscaping"
	CategoryHVAC        Category = "hvac"
	CategoryLegal       Category = "legal"
)

// ValidCategory reports whether c is a known business category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryGeneric, CategoryCleaning, CategoryLandscaping, CategoryHVAC, CategoryLegal:
		return true
	}
	return false
}

// Shortcut is a tenant-configured keyword answer served without calling
// the generation backend.
type Shortcut struct {
	Keywords []string `json:"keywords"`
	Answer   string   `json:"answer"`
}

// Tenant is a registered business owning its prompt configuration and leads.
type Tenant struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	APIKey         string   `json:"api_key"`
	ContactAddress string   `json:"contact_address"`
	Category       Category `json:"category"`
	PromptTemplate string   `json:"prompt_template,omitempty"`

	// SecretHash is the bcrypt hash of the dashboard login secret.
	SecretHash string `json:"secret_hash,omitempty"`

	// Lead-capture configuration.
	CaptureAlways  bool       `json:"capture_always"`
	TriggerPhrases []string   `json:"trigger_phrases,omitempty"`
	Shortcuts      []Shortcut `json:"shortcuts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns a copy safe to return to API callers.
func (t *Tenant) Public() Tenant {
	out := *t
	out.SecretHash = ""
	return out
}
