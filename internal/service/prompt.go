package service

import (
	"strings"

	"qwen-console/internal/config"
	"qwen-console/internal/llm"
	"qwen-console/internal/model"
)

// ContextPrompt is the template of the system message sent along with
// user-supplied context. Every {context} is replaced by the context text.
type ContextPrompt string

const contextPlaceholder = "{context}"

// Render returns the system message for contextText. A template without a
// placeholder gets the context appended so the text is always embedded.
func (p ContextPrompt) Render(contextText string) string {
	tmpl := string(p)
	if tmpl == "" {
		tmpl = config.DefaultContextPrompt
	}
	if !strings.Contains(tmpl, contextPlaceholder) {
		return tmpl + "\n\n" + contextText
	}
	return strings.ReplaceAll(tmpl, contextPlaceholder, contextText)
}

// BuildChatRequest assembles the payload for one submission: the context
// system message when contextText is not blank, the whole history in order,
// and finally the question. The session ids are attached only when set.
func BuildChatRequest(sess *model.Session, question, contextText string, prompt ContextPrompt) *llm.ChatRequest {
	messages := make([]llm.Message, 0, len(sess.History)+2)
	if strings.TrimSpace(contextText) != "" {
		messages = append(messages, llm.Message{
			Role:    string(model.RoleSystem),
			Content: prompt.Render(contextText),
		})
	}
	for _, msg := range sess.History {
		messages = append(messages, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: string(model.RoleUser), Content: question})

	return &llm.ChatRequest{
		Messages: messages,
		Model:    sess.Connection.Model,
		ChatID:   sess.ChatID,
		ParentID: sess.ParentID,
	}
}
