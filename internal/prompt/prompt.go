// Package prompt assembles the instruction context handed to generation.
package prompt

import (
	"strings"

	"github.com/snowskye/lead-gateway/internal/llm"
	"github.com/snowskye/lead-gateway/internal/model"
)

// DefaultHistoryWindow bounds the prior turns included in the context.
const DefaultHistoryWindow = 5

// minTemplateLength is the threshold below which a tenant override is
// considered trivial and ignored in favor of the category template.
const minTemplateLength = 12

// DefaultTemplate is the generic system instruction.
const DefaultTemplate = "You are a helpful AI assistant for a business website. Keep responses professional and concise."

var categoryTemplates = map[model.Category]string{
	model.CategoryCleaning:    "You are a friendly assistant for a cleaning services company. Answer questions about services, scheduling, and pricing concisely, and encourage visitors to request a quote.",
	model.CategoryLandscaping: "You are a friendly assistant for a landscaping company. Answer questions about lawn care, design, and seasonal services concisely, and encourage visitors to request a quote.",
	model.CategoryHVAC:        "You are a friendly assistant for a heating and cooling company. Answer questions about installation, repair, and maintenance concisely, and encourage visitors to request a quote.",
	model.CategoryLegal:       "You are a professional assistant for a law office. Answer general questions about the practice concisely, never give legal advice, and encourage visitors to request a consultation.",
}

// SystemTemplate selects the system instruction for a tenant with fixed
// precedence: explicit tenant override, then category template, then the
// generic default. Templates are never merged.
func SystemTemplate(t *model.Tenant) string {
	if custom := strings.TrimSpace(t.PromptTemplate); len(custom) >= minTemplateLength {
		return custom
	}
	if tpl, ok := categoryTemplates[t.Category]; ok {
		return tpl
	}
	return DefaultTemplate
}

// Compose builds the generation context: the system instruction, the
// windowed prior turns oldest first, and the current message last.
func Compose(t *model.Tenant, history []model.Turn, message string, window int) []llm.ChatMessage {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	messages := make([]llm.ChatMessage, 0, 2*len(history)+2)
	messages = append(messages, llm.ChatMessage{
		Role:    llm.RoleSystem,
		Content: SystemTemplate(t),
	})

	for _, turn := range history {
		messages = append(messages,
			llm.ChatMessage{Role: llm.RoleUser, Content: turn.Message},
			llm.ChatMessage{Role: llm.RoleAssistant, Content: turn.Reply},
		)
	}

	messages = append(messages, llm.ChatMessage{
		Role:    llm.RoleUser,
		Content: message,
	})
	return messages
}
