package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient(ProviderOpenAI, "sk-test")
	require.NoError(t, err)
	require.Equal(t, "openai", c.Name())

	c, err = NewClient(ProviderAnthropic, "test-key")
	require.NoError(t, err)
	require.Equal(t, "anthropic", c.Name())

	_, err = NewClient(Provider("mistral"), "test-key")
	require.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(ProviderOpenAI, "")
	require.Error(t, err)

	_, err = NewClient(ProviderAnthropic, "")
	require.Error(t, err)
}
