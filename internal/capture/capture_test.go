package capture

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snowskye/lead-gateway/internal/model"
)

func testTenant() *model.Tenant {
	return &model.Tenant{ID: "tenant-1", Name: "Acme Cleaning"}
}

func TestFullDialogue(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	res := m.Step(tn, "conv-1", "Can I get a quote for my office?")
	require.True(t, res.Handled)
	require.Equal(t, PromptAskName, res.Reply)
	require.Nil(t, res.Lead)
	require.True(t, m.Active(tn.ID, "conv-1"))

	res = m.Step(tn, "conv-1", "Dana Wells")
	require.True(t, res.Handled)
	require.Equal(t, PromptAskContact, res.Reply)
	require.Nil(t, res.Lead)

	res = m.Step(tn, "conv-1", "Dana@Example.com")
	require.True(t, res.Handled)
	require.Equal(t, PromptAskConcern, res.Reply)
	require.Nil(t, res.Lead)

	res = m.Step(tn, "conv-1", "Weekly cleaning for a 20-person office")
	require.True(t, res.Handled)
	require.Equal(t, PromptThankYou, res.Reply)
	require.NotNil(t, res.Lead)
	require.Equal(t, "tenant-1", res.Lead.TenantID)
	require.Equal(t, "Dana Wells", res.Lead.Name)
	require.Equal(t, "dana@example.com", res.Lead.Contact)
	require.Equal(t, "Weekly cleaning for a 20-person office", res.Lead.Concern)
	require.Equal(t, model.LeadSourceCapture, res.Lead.Source)
	require.NotEmpty(t, res.Lead.ID)
	require.False(t, m.Active(tn.ID, "conv-1"))
}

func TestNoTriggerFallsThrough(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	res := m.Step(tn, "conv-1", "What are your opening hours?")
	require.False(t, res.Handled)
	require.Nil(t, res.Lead)
	require.False(t, m.Active(tn.ID, "conv-1"))
}

func TestInvalidContactDoesNotAdvance(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	m.Step(tn, "conv-1", "I'd like an estimate")
	m.Step(tn, "conv-1", "Sam")

	res := m.Step(tn, "conv-1", "not a contact")
	require.True(t, res.Handled)
	require.Equal(t, PromptInvalidContact, res.Reply)

	// Still asking for contact; a valid one now advances.
	res = m.Step(tn, "conv-1", "+1 (555) 010-2030")
	require.True(t, res.Handled)
	require.Equal(t, PromptAskConcern, res.Reply)
}

func TestLeadEmittedAtMostOnce(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	m.Step(tn, "conv-1", "quote please")
	m.Step(tn, "conv-1", "Sam")
	m.Step(tn, "conv-1", "sam@example.com")
	res := m.Step(tn, "conv-1", "gutter repair")
	require.NotNil(t, res.Lead)

	// Completed sessions are terminal: no re-trigger, no second lead.
	res = m.Step(tn, "conv-1", "another quote please")
	require.False(t, res.Handled)
	require.Nil(t, res.Lead)
}

func TestCaptureAlways(t *testing.T) {
	m := NewMachine()
	tn := testTenant()
	tn.CaptureAlways = true

	res := m.Step(tn, "conv-1", "hello there")
	require.True(t, res.Handled)
	require.Equal(t, PromptAskName, res.Reply)
}

func TestTenantTriggerPhrases(t *testing.T) {
	m := NewMachine()
	tn := testTenant()
	tn.TriggerPhrases = []string{"book a visit"}

	// Default triggers are replaced, not merged.
	res := m.Step(tn, "conv-1", "can I get a quote?")
	require.False(t, res.Handled)

	res = m.Step(tn, "conv-1", "I want to Book A Visit next week")
	require.True(t, res.Handled)
	require.Equal(t, PromptAskName, res.Reply)
}

func TestResetRestartsDialogue(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	m.Step(tn, "conv-1", "pricing?")
	require.True(t, m.Active(tn.ID, "conv-1"))

	m.Reset(tn.ID, "conv-1")
	require.False(t, m.Active(tn.ID, "conv-1"))

	res := m.Step(tn, "conv-1", "pricing?")
	require.True(t, res.Handled)
	require.Equal(t, PromptAskName, res.Reply)
}

func TestSessionsIsolatedByConversation(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	m.Step(tn, "conv-1", "quote")
	res := m.Step(tn, "conv-2", "hello")
	require.False(t, res.Handled)

	other := &model.Tenant{ID: "tenant-2"}
	res = m.Step(other, "conv-1", "hello")
	require.False(t, res.Handled)
}

func TestIdleMessagesRetainNoState(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	// The widget generates a fresh conversation key per visitor, so
	// non-triggering traffic on ever-new keys must not grow the table.
	for i := 0; i < 1000; i++ {
		res := m.Step(tn, fmt.Sprintf("conv-%d", i), "what are your opening hours?")
		require.False(t, res.Handled)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Empty(t, m.sessions)
}

func TestStaleSessionsSwept(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	m.Step(tn, "conv-old", "quote please")
	m.Step(tn, "conv-done", "quote please")
	m.Step(tn, "conv-done", "Sam")
	m.Step(tn, "conv-done", "sam@example.com")
	m.Step(tn, "conv-done", "gutter repair")

	// Age both sessions past the TTL and force the next step to sweep.
	m.mu.Lock()
	for _, s := range m.sessions {
		s.lastSeen = time.Now().Add(-2 * sessionTTL)
	}
	m.lastCleanup = time.Now().Add(-2 * cleanupInterval)
	m.mu.Unlock()

	m.Step(tn, "conv-fresh", "hello")

	m.mu.Lock()
	_, oldKept := m.sessions[sessionKey(tn.ID, "conv-old")]
	_, doneKept := m.sessions[sessionKey(tn.ID, "conv-done")]
	m.mu.Unlock()
	require.False(t, oldKept)
	require.False(t, doneKept)
}

func TestActiveSessionSurvivesSweep(t *testing.T) {
	m := NewMachine()
	tn := testTenant()

	m.Step(tn, "conv-1", "quote please")

	m.mu.Lock()
	m.lastCleanup = time.Now().Add(-2 * cleanupInterval)
	m.mu.Unlock()

	// A sweep triggered by unrelated traffic must not evict a session
	// that is still within its TTL.
	m.Step(tn, "conv-other", "hello")
	require.True(t, m.Active(tn.ID, "conv-1"))

	res := m.Step(tn, "conv-1", "Sam")
	require.Equal(t, PromptAskContact, res.Reply)
}

func TestValidContact(t *testing.T) {
	valid := []string{
		"a@b.co",
		"Dana.Wells+tag@example.org",
		"555-010-2030",
		"+44 20 7946 0958",
		"5550102030",
	}
	for _, s := range valid {
		require.True(t, ValidContact(s), "expected valid: %q", s)
	}

	invalid := []string{
		"",
		"just words",
		"a@b",
		"@example.com",
		"123",
	}
	for _, s := range invalid {
		require.False(t, ValidContact(s), "expected invalid: %q", s)
	}
}
