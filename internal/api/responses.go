package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	app_errors "qwen-console/internal/errors"
	"qwen-console/internal/model"
	"qwen-console/internal/service"
)

// This file contains shared DTOs (Data Transfer Objects) for API requests and
// responses and helper functions for sending consistent HTTP responses.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse defines a generic success response for operations that don't
// need to return a full resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// SettingsResponse is the default connection as shown to clients. The key is
// masked.
type SettingsResponse struct {
	APIURL    string `json:"api_url" example:"http://localhost:3264/api"`
	APIKey    string `json:"api_key,omitempty" example:"********7890"`
	APIKeySet bool   `json:"api_key_set"`
	Model     string `json:"model" example:"qwen-max"`
}

// UpdateSettingsRequest replaces the default connection. A missing api_key
// keeps the stored key; an empty one removes it.
type UpdateSettingsRequest struct {
	APIURL string  `json:"api_url" validate:"required,url" example:"http://localhost:3264/api"`
	APIKey *string `json:"api_key,omitempty"`
	Model  string  `json:"model" validate:"required,max=200" example:"qwen-max"`
}

// UpdateConnectionRequest replaces the connection of one session. A missing
// api_key keeps the session's key; an empty one removes it.
type UpdateConnectionRequest struct {
	APIURL string  `json:"api_url" validate:"required,url" example:"http://localhost:3264/api"`
	APIKey *string `json:"api_key,omitempty"`
	Model  string  `json:"model" validate:"required,max=200" example:"qwen-max"`
}

// SubmitMessageRequest is one question, optionally with context text.
type SubmitMessageRequest struct {
	Question string `json:"question" example:"Какова плотность газа?"`
	Context  string `json:"context,omitempty"`
}

// NewChatRequest names the chat to create. An empty name means "New Chat".
type NewChatRequest struct {
	Name string `json:"name" validate:"max=200" example:"New Chat"`
}

// FormatRequest is arbitrary text to run through the math formatter.
type FormatRequest struct {
	Text string `json:"text" validate:"required"`
}

// FormatResponse is the formatted text.
type FormatResponse struct {
	Formatted string `json:"formatted"`
}

// ContextUploadResponse is the text of an uploaded context file.
type ContextUploadResponse struct {
	Filename string `json:"filename"`
	Bytes    int    `json:"bytes"`
	Context  string `json:"context"`
}

// SessionResponse is a session as shown to clients. The key is masked.
type SessionResponse struct {
	ID              string           `json:"id"`
	Connection      model.Connection `json:"connection"`
	ChatID          string           `json:"chat_id,omitempty"`
	ParentID        string           `json:"parent_id,omitempty"`
	History         []model.Message  `json:"history"`
	AvailableModels []string         `json:"available_models,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func newSessionResponse(sess *model.Session) SessionResponse {
	history := sess.History
	if history == nil {
		history = []model.Message{}
	}
	return SessionResponse{
		ID:              sess.ID,
		Connection:      sess.Connection.Masked(),
		ChatID:          sess.ChatID,
		ParentID:        sess.ParentID,
		History:         history,
		AvailableModels: sess.AvailableModels,
		CreatedAt:       sess.CreatedAt,
		UpdatedAt:       sess.UpdatedAt,
	}
}

func newSettingsResponse(s *service.Settings) SettingsResponse {
	return SettingsResponse{
		APIURL:    s.APIURL,
		APIKey:    model.MaskSecret(s.APIKey),
		APIKeySet: s.APIKey != "",
		Model:     s.Model,
	}
}

// respondWithError is the centralized error handling function for the API layer.
// It maps business-layer errors to HTTP status codes and formats a standard
// JSON error response.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		// Validation messages from the service layer are already user-facing.
		message = err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		message = "The session was modified by another request. Please retry."
	case errors.Is(err, app_errors.ErrPermission):
		// The API rejected the key; the upstream status tells the user which.
		statusCode = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, app_errors.ErrUpstream):
		// The user needs the upstream status code and body to fix their
		// connection settings.
		statusCode = http.StatusBadGateway
		message = err.Error()
	default:
		// Anything unhandled is an internal error; details stay in the log.
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON marshals payload and writes it with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func respondWithText(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("Failed to write text response", "error", err)
	}
}
