package repository

import (
	"context"
	"sort"
	"sync"

	"qwen-console/internal/model"
)

// memoryRepository keeps sessions for the lifetime of the process only.
type memoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

func NewMemoryRepository() SessionRepository {
	return &memoryRepository{sessions: make(map[string]*model.Session)}
}

func (r *memoryRepository) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return ErrConflict
	}
	stored := session.Clone()
	stored.Revision = 1
	r.sessions[session.ID] = stored
	session.Revision = stored.Revision
	return nil
}

func (r *memoryRepository) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return stored.Clone(), nil
}

// List returns all sessions, most recently updated first.
func (r *memoryRepository) List(ctx context.Context) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s.Clone())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// Save stores the session if its revision still matches the stored one and
// advances the revision on both copies.
func (r *memoryRepository) Save(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Revision != session.Revision {
		return ErrConflict
	}
	next := session.Clone()
	next.Revision = stored.Revision + 1
	r.sessions[session.ID] = next
	session.Revision = next.Revision
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}
