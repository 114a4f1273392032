package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAdmitUpToBurst(t *testing.T) {
	l := New(5, time.Minute)

	for i := 0; i < 5; i++ {
		require.True(t, l.Admit("tenant-1"), "request %d should be admitted", i)
	}
	require.False(t, l.Admit("tenant-1"))
}

func TestTenantsIndependent(t *testing.T) {
	l := New(2, time.Minute)

	require.True(t, l.Admit("tenant-1"))
	require.True(t, l.Admit("tenant-1"))
	require.False(t, l.Admit("tenant-1"))

	// A throttled tenant does not affect others.
	require.True(t, l.Admit("tenant-2"))
	require.True(t, l.Admit("tenant-2"))
}

func TestRefill(t *testing.T) {
	// 50 requests/second refills a token every 20ms.
	l := New(50, time.Second)

	for i := 0; i < 50; i++ {
		require.True(t, l.Admit("tenant-1"))
	}
	require.False(t, l.Admit("tenant-1"))

	time.Sleep(50 * time.Millisecond)
	require.True(t, l.Admit("tenant-1"))
}

func TestDefaults(t *testing.T) {
	l := New(0, 0)
	require.True(t, l.Admit("tenant-1"))
	require.False(t, l.Admit("tenant-1"))
}
