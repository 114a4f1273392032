package model

import (
	"time"
)

// Turn is one user-message/generated-reply pair. Immutable once written;
// the persistence writer appends turns and the history store reads them
// back for context assembly.
type Turn struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenant_id"`
	ConversationKey string    `json:"conversation_key"`
	Message         string    `json:"message"`
	Reply           string    `json:"reply"`
	CreatedAt       time.Time `json:"created_at"`
}

// UsageEvent records one served chat request for quota and analytics.
type UsageEvent struct {
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}
