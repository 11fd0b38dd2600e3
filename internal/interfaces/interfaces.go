package interfaces

import (
	"context"

	"qwen-console/internal/model"
	"qwen-console/internal/service"
)

// The API layer depends on these interfaces rather than on the concrete
// services so handlers can be tested against mocks.

// ChatService defines the contract for session and conversation logic.
type ChatService interface {
	CreateSession(ctx context.Context) (*model.Session, error)
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Submit(ctx context.Context, sessionID, question, contextText string) (*service.Exchange, error)
	ClearHistory(ctx context.Context, sessionID string) (*model.Session, error)
	NewChat(ctx context.Context, sessionID, name string) (*model.Session, error)
	Transcript(ctx context.Context, sessionID string) (*service.Transcript, error)
	RequestConfig(ctx context.Context, sessionID string) (*service.RequestConfig, error)
	FormatText(text string) string
}

// ConnectionService defines the contract for per-session connection handling.
type ConnectionService interface {
	UpdateConnection(ctx context.Context, sessionID string, update model.ConnectionUpdate) (*model.Session, error)
	Test(ctx context.Context, sessionID string) (*service.ConnectionReport, error)
	ListModels(ctx context.Context, sessionID string) ([]string, error)
}

// SettingsService defines the contract for managing the default connection.
type SettingsService interface {
	InitAndGet(ctx context.Context, defaults *service.Settings) (*service.Settings, error)
	Get(ctx context.Context) (*service.Settings, error)
	Save(ctx context.Context, settings *service.Settings) error
}

var (
	_ ChatService       = (*service.ChatService)(nil)
	_ ConnectionService = (*service.ConnectionService)(nil)
	_ SettingsService   = (*service.SettingsService)(nil)
)
