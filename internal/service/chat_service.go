package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	app_errors "qwen-console/internal/errors"
	"qwen-console/internal/llm"
	"qwen-console/internal/mathfmt"
	"qwen-console/internal/model"
	"qwen-console/internal/repository"
)

// DefaultChatName is used when a new chat is created without a name.
const DefaultChatName = "New Chat"

// SettingsProvider supplies the connection new sessions start with.
type SettingsProvider interface {
	Get(ctx context.Context) (*Settings, error)
}

type ChatService struct {
	repo      repository.SessionRepository
	client    llm.Client
	settings  SettingsProvider
	formatter *mathfmt.Formatter
	prompt    ContextPrompt
}

// Exchange is the outcome of a successful submission.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	// Rendered is Answer after math formatting, ready for display.
	Rendered string `json:"rendered"`
	ChatID   string `json:"chat_id,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// RenderedMessage is a history entry prepared for display.
type RenderedMessage struct {
	Role     model.Role `json:"role"`
	Content  string     `json:"content"`
	Rendered string     `json:"rendered"`
}

// Transcript is a session's history prepared for display.
type Transcript struct {
	SessionID string            `json:"session_id"`
	ChatID    string            `json:"chat_id,omitempty"`
	ParentID  string            `json:"parent_id,omitempty"`
	Messages  []RenderedMessage `json:"messages"`
}

func NewChatService(
	repo repository.SessionRepository,
	client llm.Client,
	settings SettingsProvider,
	formatter *mathfmt.Formatter,
	prompt ContextPrompt,
) *ChatService {
	if formatter == nil {
		formatter = mathfmt.Default()
	}
	return &ChatService{
		repo:      repo,
		client:    client,
		settings:  settings,
		formatter: formatter,
		prompt:    prompt,
	}
}

// CreateSession starts an empty session using the current default connection.
func (s *ChatService) CreateSession(ctx context.Context) (*model.Session, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load settings: %v", app_errors.ErrInternal, err)
	}

	sess := model.NewSession(uuid.NewString(), settings.Connection())
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, translateRepoError(err, sess.ID)
	}
	slog.Info("Created session", "session_id", sess.ID, "api_url", sess.Connection.APIURL, "model", sess.Connection.Model)
	return sess, nil
}

func (s *ChatService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	return sess, nil
}

func (s *ChatService) ListSessions(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInternal, err)
	}
	return sessions, nil
}

func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return translateRepoError(err, sessionID)
	}
	slog.Info("Deleted session", "session_id", sessionID)
	return nil
}

// Submit sends a question, with optional context, to the API and records the
// exchange. A blank question is rejected before any network call. If the call
// fails the session is left exactly as it was.
func (s *ChatService) Submit(ctx context.Context, sessionID, question, contextText string) (*Exchange, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: please enter a question", app_errors.ErrValidation)
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	req := BuildChatRequest(sess, question, contextText, s.prompt)
	slog.Debug("Submitting question",
		"session_id", sessionID,
		"model", req.Model,
		"messages", len(req.Messages),
		"chat_id", req.ChatID,
		"parent_id", req.ParentID,
	)

	resp, err := s.client.ChatCompletion(ctx, sess.Connection.Endpoint(), req)
	if err != nil {
		slog.Warn("Chat completion failed", "session_id", sessionID, "error", err)
		return nil, upstreamError(err)
	}
	answer, err := resp.Content()
	if err != nil {
		slog.Warn("Chat completion returned no content", "session_id", sessionID, "error", err)
		return nil, upstreamError(err)
	}

	sess.ApplyExchange(question, answer, resp.ChatID, resp.ParentID)
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	slog.Info("Recorded exchange", "session_id", sessionID, "chat_id", sess.ChatID, "history", len(sess.History))

	return &Exchange{
		Question: question,
		Answer:   answer,
		Rendered: s.formatter.Format(answer),
		ChatID:   sess.ChatID,
		ParentID: sess.ParentID,
	}, nil
}

// ClearHistory empties the history and forgets the chat and parent ids.
func (s *ChatService) ClearHistory(ctx context.Context, sessionID string) (*model.Session, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Reset()
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	slog.Info("Cleared session history", "session_id", sessionID)
	return sess, nil
}

// NewChat asks the server for a new chat and binds the session to it. The
// session is reset only after the server answered with a chat id.
func (s *ChatService) NewChat(ctx context.Context, sessionID, name string) (*model.Session, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultChatName
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.CreateChat(ctx, sess.Connection.Endpoint(), sess.Connection.Model, name)
	if err != nil {
		slog.Warn("Creating chat failed", "session_id", sessionID, "error", err)
		return nil, upstreamError(err)
	}
	if resp.ChatID == "" {
		return nil, upstreamError(fmt.Errorf("create chat: response did not contain a chatId"))
	}

	sess.StartChat(resp.ChatID)
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	slog.Info("Started new chat", "session_id", sessionID, "chat_id", resp.ChatID, "name", name)
	return sess, nil
}

// Transcript returns the history for display. Only assistant messages go
// through the math formatter.
func (s *ChatService) Transcript(ctx context.Context, sessionID string) (*Transcript, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]RenderedMessage, 0, len(sess.History))
	for _, msg := range sess.History {
		rendered := msg.Content
		if msg.Role == model.RoleAssistant {
			rendered = s.formatter.Format(msg.Content)
		}
		messages = append(messages, RenderedMessage{Role: msg.Role, Content: msg.Content, Rendered: rendered})
	}
	return &Transcript{
		SessionID: sess.ID,
		ChatID:    sess.ChatID,
		ParentID:  sess.ParentID,
		Messages:  messages,
	}, nil
}

// FormatText applies the math formatter to arbitrary text.
func (s *ChatService) FormatText(text string) string {
	return s.formatter.Format(text)
}

// RequestConfig describes what the next request of a session will look like.
// The API key never appears in clear text.
type RequestConfig struct {
	APIURL   string            `json:"api_url"`
	Headers  map[string]string `json:"headers"`
	Model    string            `json:"model"`
	ChatID   *string           `json:"chat_id"`
	ParentID *string           `json:"parent_id"`
}

// RequestConfig resolves the request configuration of a session.
func (s *ChatService) RequestConfig(ctx context.Context, sessionID string) (*RequestConfig, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewRequestConfig(sess), nil
}

// NewRequestConfig builds the RequestConfig of sess.
func NewRequestConfig(sess *model.Session) *RequestConfig {
	headers := map[string]string{}
	for name, values := range sess.Connection.Endpoint().Headers() {
		headers[name] = strings.Join(values, ", ")
	}
	if sess.Connection.APIKey != "" {
		headers["Authorization"] = "Bearer " + model.MaskSecret(sess.Connection.APIKey)
	}

	cfg := &RequestConfig{
		APIURL:  sess.Connection.APIURL,
		Headers: headers,
		Model:   sess.Connection.Model,
	}
	if sess.ChatID != "" {
		id := sess.ChatID
		cfg.ChatID = &id
	}
	if sess.ParentID != "" {
		id := sess.ParentID
		cfg.ParentID = &id
	}
	return cfg
}

// String renders the configuration as a plain-text block.
func (c *RequestConfig) String() string {
	headers, err := json.MarshalIndent(c.Headers, "", "  ")
	if err != nil {
		headers = []byte("{}")
	}
	return fmt.Sprintf("API URL: %s\nHeaders: %s\nSelected Model: %s\nCurrent Chat ID: %s\nCurrent Parent ID: %s\n",
		c.APIURL, headers, c.Model, orNone(c.ChatID), orNone(c.ParentID))
}

func orNone(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}
