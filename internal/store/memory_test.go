package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snowskye/lead-gateway/internal/model"
)

func TestRecentTurnsWindow(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		err := m.AppendTurn(ctx, &model.Turn{
			TenantID:        "t1",
			ConversationKey: "c1",
			Message:         fmt.Sprintf("q%d", i),
			Reply:           fmt.Sprintf("a%d", i),
		})
		require.NoError(t, err)
	}

	turns, err := m.RecentTurns(ctx, "t1", "c1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)

	// Oldest first within the trailing window.
	require.Equal(t, "q5", turns[0].Message)
	require.Equal(t, "q7", turns[2].Message)
}

func TestRecentTurnsScopedToConversation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.AppendTurn(ctx, &model.Turn{TenantID: "t1", ConversationKey: "c1", Message: "hi"}))

	turns, err := m.RecentTurns(ctx, "t1", "c2", 5)
	require.NoError(t, err)
	require.Empty(t, turns)

	turns, err = m.RecentTurns(ctx, "t2", "c1", 5)
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestListLeadsNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, m.AppendLead(ctx, &model.Lead{
			TenantID: "t1",
			Name:     fmt.Sprintf("lead-%d", i),
		}))
	}

	leads, err := m.ListLeads(ctx, "t1", 3)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	require.Equal(t, "lead-3", leads[0].Name)
	require.Equal(t, "lead-1", leads[2].Name)
}

func TestUsageCount(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.AppendUsage(ctx, &model.UsageEvent{TenantID: "t1"}))
	require.NoError(t, m.AppendUsage(ctx, &model.UsageEvent{TenantID: "t1"}))

	require.Equal(t, 2, m.UsageCount("t1"))
	require.Equal(t, 0, m.UsageCount("t2"))
}
