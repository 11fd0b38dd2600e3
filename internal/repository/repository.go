package repository

import (
	"context"

	"qwen-console/internal/model"
)

// SessionRepository defines storage for conversation sessions.
// Implementations hand out copies: a caller mutates its copy and hands it back
// through Save, which fails with ErrConflict if the stored session moved on in
// the meantime.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	List(ctx context.Context) ([]*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, sessionID string) error
}
