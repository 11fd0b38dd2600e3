package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	app_errors "qwen-console/internal/errors"
	"qwen-console/internal/llm"
	"qwen-console/internal/model"
	"qwen-console/internal/repository"
)

// ConnectionService handles the connection settings of sessions.
type ConnectionService struct {
	repo   repository.SessionRepository
	client llm.Client
}

// ConnectionReport is the result of a connection test.
type ConnectionReport struct {
	Connected     bool           `json:"connected"`
	Authenticated *bool          `json:"authenticated,omitempty"`
	Status        map[string]any `json:"status,omitempty"`
	Models        []string       `json:"models"`
	ModelsError   string         `json:"models_error,omitempty"`
	SelectedModel string         `json:"selected_model"`
}

func NewConnectionService(repo repository.SessionRepository, client llm.Client) *ConnectionService {
	return &ConnectionService{repo: repo, client: client}
}

// UpdateConnection changes the connection of a session. History and ids are
// kept; they belong to the conversation, not to the connection.
func (s *ConnectionService) UpdateConnection(ctx context.Context, sessionID string, update model.ConnectionUpdate) (*model.Session, error) {
	update.APIURL = strings.TrimSpace(update.APIURL)
	update.Model = strings.TrimSpace(update.Model)
	if update.APIURL == "" {
		return nil, fmt.Errorf("%w: api_url must not be empty", app_errors.ErrValidation)
	}
	if update.Model == "" {
		return nil, fmt.Errorf("%w: model must not be empty", app_errors.ErrValidation)
	}

	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	conn := update.Apply(sess.Connection)
	if sess.Connection.APIURL != conn.APIURL {
		// Models offered by another server no longer apply.
		sess.AvailableModels = nil
	}
	sess.Connection = conn
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	slog.Info("Updated session connection", "session_id", sessionID, "api_url", conn.APIURL, "model", conn.Model)
	return sess, nil
}

// Test checks that the API answers and, if it does, fetches the model list
// and re-selects the session's model from it. A failing model list is
// reported but does not fail the test.
func (s *ConnectionService) Test(ctx context.Context, sessionID string) (*ConnectionReport, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	ep := sess.Connection.Endpoint()

	status, err := s.client.Status(ctx, ep)
	if err != nil {
		slog.Warn("Connection test failed", "session_id", sessionID, "api_url", ep.BaseURL, "error", err)
		return nil, upstreamError(err)
	}
	report := &ConnectionReport{
		Connected:     true,
		Authenticated: status.Authenticated,
		Status:        status.Fields,
		Models:        []string{},
		SelectedModel: sess.Connection.Model,
	}

	models, err := s.client.ListModels(ctx, ep)
	if err != nil {
		slog.Warn("Could not fetch models", "session_id", sessionID, "error", err)
		report.ModelsError = err.Error()
		return report, nil
	}

	sess.SetAvailableModels(models.IDs())
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	report.Models = sess.AvailableModels
	if report.Models == nil {
		report.Models = []string{}
	}
	report.SelectedModel = sess.Connection.Model
	slog.Info("Connection test succeeded", "session_id", sessionID, "models", len(report.Models), "selected_model", report.SelectedModel)
	return report, nil
}

// ListModels returns the model ids the session's API offers without changing
// the session.
func (s *ConnectionService) ListModels(ctx context.Context, sessionID string) ([]string, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, translateRepoError(err, sessionID)
	}
	models, err := s.client.ListModels(ctx, sess.Connection.Endpoint())
	if err != nil {
		return nil, upstreamError(err)
	}
	return models.IDs(), nil
}
