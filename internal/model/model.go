package model

import (
	"strings"
	"time"

	"qwen-console/internal/llm"
)

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Connection is the API a session talks to.
type Connection struct {
	APIURL string `json:"api_url"`
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// Endpoint converts the connection into the client's endpoint.
func (c Connection) Endpoint() llm.Endpoint {
	return llm.Endpoint{BaseURL: c.APIURL, APIKey: c.APIKey}
}

// ConnectionUpdate changes a connection. A nil APIKey keeps the current key
// and an empty one removes it.
type ConnectionUpdate struct {
	APIURL string
	APIKey *string
	Model  string
}

// Apply returns c with the update applied.
func (u ConnectionUpdate) Apply(c Connection) Connection {
	c.APIURL = u.APIURL
	c.Model = u.Model
	if u.APIKey != nil {
		c.APIKey = *u.APIKey
	}
	return c
}

// Masked returns a copy safe to show to a user: the key is reduced to its last
// four characters.
func (c Connection) Masked() Connection {
	c.APIKey = MaskSecret(c.APIKey)
	return c
}

// MaskSecret hides all but the last four characters of s.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", 8) + string(runes[len(runes)-4:])
}

// Session is the state of one conversation with the API.
//
// ChatID and ParentID are assigned only from server responses; they are never
// generated locally. History is chronological, oldest first, and is replayed to
// the server verbatim.
type Session struct {
	ID              string     `json:"id"`
	Connection      Connection `json:"connection"`
	History         []Message  `json:"history"`
	ChatID          string     `json:"chat_id,omitempty"`
	ParentID        string     `json:"parent_id,omitempty"`
	AvailableModels []string   `json:"available_models,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	// Revision is bumped by the repository on every save.
	Revision uint64 `json:"revision"`
}

// NewSession returns an empty session.
func NewSession(id string, conn Connection) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		Connection: conn,
		History:    []Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Reset clears the history and both server ids.
func (s *Session) Reset() {
	s.History = []Message{}
	s.ChatID = ""
	s.ParentID = ""
	s.touch()
}

// ApplyExchange records a successful exchange: the question, then the answer.
// The ids are overwritten only when the server supplied them.
func (s *Session) ApplyExchange(question, answer string, chatID, parentID *string) {
	s.History = append(s.History,
		Message{Role: RoleUser, Content: question},
		Message{Role: RoleAssistant, Content: answer},
	)
	if chatID != nil {
		s.ChatID = *chatID
	}
	if parentID != nil {
		s.ParentID = *parentID
	}
	s.touch()
}

// StartChat resets the session and binds it to a chat the server just created.
func (s *Session) StartChat(chatID string) {
	s.Reset()
	s.ChatID = chatID
}

// SetAvailableModels stores the models the server offers and re-selects the
// model: the first id containing the current model name wins, otherwise the
// first id. An empty list leaves the selection alone.
func (s *Session) SetAvailableModels(ids []string) {
	s.AvailableModels = append([]string(nil), ids...)
	s.Connection.Model = SelectModel(ids, s.Connection.Model)
	s.touch()
}

// SelectModel picks the entry of ids matching current, as described on
// SetAvailableModels.
func SelectModel(ids []string, current string) string {
	if len(ids) == 0 {
		return current
	}
	for _, id := range ids {
		if strings.Contains(id, current) {
			return id
		}
	}
	return ids[0]
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.History = append([]Message{}, s.History...)
	if s.AvailableModels != nil {
		c.AvailableModels = append([]string(nil), s.AvailableModels...)
	}
	return &c
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
