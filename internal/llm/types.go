package llm

import (
	"fmt"
	"net/http"
	"strings"
)

// Endpoint identifies the API a request goes to.
type Endpoint struct {
	BaseURL string
	APIKey  string
}

// URL joins the base URL and an API path.
func (e Endpoint) URL(path string) string {
	return strings.TrimRight(e.BaseURL, "/") + path
}

// Headers returns the headers sent with every request. Authorization is only
// present when a key is configured; without one the request goes out
// unauthenticated and the server decides whether that is acceptable.
func (e Endpoint) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if e.APIKey != "" {
		h.Set("Authorization", "Bearer "+e.APIKey)
	}
	return h
}

// Message is a single chat message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StatusResponse is the body of GET /status. Fields is the full JSON object;
// Authenticated is set only when the server reports it.
type StatusResponse struct {
	Authenticated *bool          `json:"authenticated,omitempty"`
	Fields        map[string]any `json:"-"`
}

// Model is one entry of GET /models.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelList is the body of GET /models.
type ModelList struct {
	Data []Model `json:"data"`
}

// IDs returns the model ids in server order.
func (l *ModelList) IDs() []string {
	ids := make([]string, 0, len(l.Data))
	for _, m := range l.Data {
		ids = append(ids, m.ID)
	}
	return ids
}

// ChatRequest is the body of POST /chat/completions. ChatID and ParentID are
// omitted from the JSON when empty.
type ChatRequest struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model"`
	ChatID   string    `json:"chatId,omitempty"`
	ParentID string    `json:"parentId,omitempty"`
}

// Choice is one completion alternative.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// ChatResponse is the body of a successful completion. ChatID and ParentID are
// nil when the server did not send them.
type ChatResponse struct {
	ID       string   `json:"id,omitempty"`
	Model    string   `json:"model,omitempty"`
	Choices  []Choice `json:"choices"`
	ChatID   *string  `json:"chatId,omitempty"`
	ParentID *string  `json:"parentId,omitempty"`
}

// Content returns the text of the first choice.
func (r *ChatResponse) Content() (string, error) {
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}
	return r.Choices[0].Message.Content, nil
}

// CreateChatRequest is the body of POST /chats.
type CreateChatRequest struct {
	Model string `json:"model"`
	Name  string `json:"name"`
}

// CreateChatResponse is the body of a successful POST /chats.
type CreateChatResponse struct {
	ChatID string `json:"chatId"`
}
