package service

import (
	"errors"
	"fmt"
	"net/http"

	app_errors "qwen-console/internal/errors"
	"qwen-console/internal/llm"
	"qwen-console/internal/repository"
)

// translateRepoError maps repository errors onto the application sentinels.
func translateRepoError(err error, sessionID string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: session %s", app_errors.ErrNotFound, sessionID)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: session %s was modified by another request", app_errors.ErrConflict, sessionID)
	default:
		return fmt.Errorf("%w: %v", app_errors.ErrInternal, err)
	}
}

// upstreamError wraps a client error so callers can match both ErrUpstream and
// the typed client error. A rejected key also matches ErrPermission.
func upstreamError(err error) error {
	if se, ok := llm.AsStatus(err); ok && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: %w: %w", app_errors.ErrUpstream, app_errors.ErrPermission, err)
	}
	return fmt.Errorf("%w: %w", app_errors.ErrUpstream, err)
}
