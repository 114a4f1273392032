package prompt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snowskye/lead-gateway/internal/llm"
	"github.com/snowskye/lead-gateway/internal/model"
)

func TestSystemTemplatePrecedence(t *testing.T) {
	// Explicit override wins over the category template.
	tn := &model.Tenant{
		Category:       model.CategoryCleaning,
		PromptTemplate: "You are the assistant for Sparkle Cleaning in Portland.",
	}
	require.Equal(t, tn.PromptTemplate, SystemTemplate(tn))

	// Without an override the category template applies.
	tn.PromptTemplate = ""
	require.Equal(t, categoryTemplates[model.CategoryCleaning], SystemTemplate(tn))

	// Unknown category falls back to the generic default.
	tn.Category = model.Category("bakery")
	require.Equal(t, DefaultTemplate, SystemTemplate(tn))
}

func TestTrivialOverrideIgnored(t *testing.T) {
	tn := &model.Tenant{
		Category:       model.CategoryHVAC,
		PromptTemplate: "   hi   ",
	}
	require.Equal(t, categoryTemplates[model.CategoryHVAC], SystemTemplate(tn))
}

func TestComposeOrdering(t *testing.T) {
	tn := &model.Tenant{Category: model.CategoryLegal}
	history := []model.Turn{
		{Message: "first question", Reply: "first answer"},
		{Message: "second question", Reply: "second answer"},
	}

	messages := Compose(tn, history, "third question", 5)
	require.Len(t, messages, 6)

	require.Equal(t, llm.RoleSystem, messages[0].Role)
	require.Equal(t, categoryTemplates[model.CategoryLegal], messages[0].Content)

	require.Equal(t, llm.RoleUser, messages[1].Role)
	require.Equal(t, "first question", messages[1].Content)
	require.Equal(t, llm.RoleAssistant, messages[2].Role)
	require.Equal(t, "first answer", messages[2].Content)

	require.Equal(t, llm.RoleUser, messages[5].Role)
	require.Equal(t, "third question", messages[5].Content)
}

func TestComposeWindowBound(t *testing.T) {
	tn := &model.Tenant{}
	var history []model.Turn
	for i := 0; i < 10; i++ {
		history = append(history, model.Turn{
			Message: fmt.Sprintf("q%d", i),
			Reply:   fmt.Sprintf("a%d", i),
		})
	}

	messages := Compose(tn, history, "current", 3)
	// system + 3 windowed pairs + current message
	require.Len(t, messages, 8)

	// The window keeps the most recent turns.
	require.Equal(t, "q7", messages[1].Content)
	require.Equal(t, "a9", messages[6].Content)
}

func TestComposeNoHistory(t *testing.T) {
	messages := Compose(&model.Tenant{}, nil, "hello", 0)
	require.Len(t, messages, 2)
	require.Equal(t, llm.RoleSystem, messages[0].Role)
	require.Equal(t, "hello", messages[1].Content)
}
