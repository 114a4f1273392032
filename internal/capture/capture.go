// Package capture implements the lead-capture dialogue state machine.
//
// A capture session walks a visitor through name, contact, and concern
// before normal generation resumes. Sessions are keyed by tenant and
// conversation key; each transition is a per-key critical section so
// concurrent requests for the same conversation cannot lose or duplicate
// a step.
package capture

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snowskye/lead-gateway/internal/model"
	"github.com/snowskye/lead-gateway/pkg/metrics"
)

// Step is the current position in the capture dialogue. Steps only move
// forward; they never regress except by explicit reset.
type Step int

const (
	StepIdle Step = iota
	StepAskName
	StepAskContact
	StepAskConcern
	StepComplete
)

// Scripted dialogue replies.
const (
	PromptAskName        = "Great! What's your name?"
	PromptAskContact     = "Nice to meet you! What's the best phone number or email to reach you?"
	PromptInvalidContact = "That doesn't look like a valid phone number or email. Please enter a valid phone number or email."
	PromptAskConcern     = "Got it. What can we help you with?"
	PromptThankYou       = "Thanks! We'll contact you shortly."
)

// defaultTriggers starts capture when no tenant phrases are configured.
var defaultTriggers = []string{"quote", "estimate", "pricing"}

const (
	cleanupInterval = 5 * time.Minute
	sessionTTL      = 30 * time.Minute
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{5,18}$`)
)

// ValidContact reports whether s is syntactically an email address or a
// phone number.
func ValidContact(s string) bool {
	s = strings.TrimSpace(s)
	return emailRe.MatchString(strings.ToLower(s)) || phoneRe.MatchString(s)
}

// session is the ephemeral per-conversation capture state.
type session struct {
	mu      sync.Mutex
	step    Step
	name    string
	contact string
	concern string

	// lastSeen is guarded by the machine mutex, not the session mutex.
	lastSeen time.Time
}

// Result is the outcome of feeding one message to the machine.
type Result struct {
	// Handled is true when the machine short-circuits the request with a
	// scripted reply. False means the message falls through to normal
	// generation.
	Handled bool

	// Reply is the scripted reply when Handled.
	Reply string

	// Lead is non-nil exactly once per session, on the transition into
	// the terminal step.
	Lead *model.Lead
}

// Machine holds capture sessions for all conversations. Sessions exist
// only while a dialogue is underway or recently finished; idle traffic
// never grows the table, and stale entries are swept inline.
type Machine struct {
	mu          sync.Mutex
	sessions    map[string]*session
	lastCleanup time.Time
}

// NewMachine creates an empty capture machine.
func NewMachine() *Machine {
	return &Machine{
		sessions:    make(map[string]*session),
		lastCleanup: time.Now(),
	}
}

func sessionKey(tenantID, conversationKey string) string {
	return tenantID + "/" + conversationKey
}

// Step feeds one inbound message through the capture dialogue for the
// given conversation and returns the transition outcome.
func (m *Machine) Step(t *model.Tenant, conversationKey, message string) Result {
	key := sessionKey(t.ID, conversationKey)
	message = strings.TrimSpace(message)
	now := time.Now()

	m.mu.Lock()
	if now.Sub(m.lastCleanup) > cleanupInterval {
		for k, s := range m.sessions {
			if now.Sub(s.lastSeen) > sessionTTL {
				delete(m.sessions, k)
			}
		}
		m.lastCleanup = now
	}

	s, ok := m.sessions[key]
	if !ok {
		// A session exists only once the dialogue starts; conversations
		// that never trigger must not grow the table.
		if !t.CaptureAlways && !triggered(t, message) {
			m.mu.Unlock()
			return Result{}
		}
		m.sessions[key] = &session{step: StepAskName, lastSeen: now}
		m.mu.Unlock()
		metrics.CaptureSessionsTotal.WithLabelValues(t.ID, "started").Inc()
		return Result{Handled: true, Reply: PromptAskName}
	}
	s.lastSeen = now
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.step {
	case StepAskName:
		// Name is stored verbatim; the only requirement is non-empty,
		// and transport validation already rejected empty messages.
		s.name = message
		s.step = StepAskContact
		return Result{Handled: true, Reply: PromptAskContact}

	case StepAskContact:
		if !ValidContact(message) {
			// Invalid input must not advance the step.
			return Result{Handled: true, Reply: PromptInvalidContact}
		}
		s.contact = normalizeContact(message)
		s.step = StepAskConcern
		return Result{Handled: true, Reply: PromptAskConcern}

	case StepAskConcern:
		s.concern = message
		s.step = StepComplete
		metrics.CaptureSessionsTotal.WithLabelValues(t.ID, "completed").Inc()
		return Result{
			Handled: true,
			Reply:   PromptThankYou,
			Lead: &model.Lead{
				ID:        uuid.Must(uuid.NewV7()).String(),
				TenantID:  t.ID,
				Name:      s.name,
				Contact:   s.contact,
				Concern:   s.concern,
				Source:    model.LeadSourceCapture,
				CreatedAt: time.Now(),
			},
		}

	case StepComplete:
		// Terminal for this conversation key; capture does not re-trigger.
		return Result{}
	}

	return Result{}
}

// Active reports whether a capture session is mid-dialogue for the
// conversation. Cached replies must not be served while active.
func (m *Machine) Active(tenantID, conversationKey string) bool {
	m.mu.Lock()
	s, ok := m.sessions[sessionKey(tenantID, conversationKey)]
	m.mu.Unlock()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step > StepIdle && s.step < StepComplete
}

// Reset discards the session for a conversation key. The next message
// starts from idle again.
func (m *Machine) Reset(tenantID, conversationKey string) {
	m.mu.Lock()
	delete(m.sessions, sessionKey(tenantID, conversationKey))
	m.mu.Unlock()
}

func triggered(t *model.Tenant, message string) bool {
	phrases := t.TriggerPhrases
	if len(phrases) == 0 {
		phrases = defaultTriggers
	}

	lower := strings.ToLower(message)
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func normalizeContact(s string) string {
	s = strings.TrimSpace(s)
	if emailRe.MatchString(strings.ToLower(s)) {
		return strings.ToLower(s)
	}
	return s
}
