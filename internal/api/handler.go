package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "qwen-console/internal/errors"
	"qwen-console/internal/interfaces"
	"qwen-console/internal/service"
)

// ChatHandler serves settings, sessions and conversations.
type ChatHandler struct {
	chatService     interfaces.ChatService
	settingsService interfaces.SettingsService
	maxContextBytes int64
}

func NewChatHandler(chatSvc interfaces.ChatService, settingsSvc interfaces.SettingsService, maxContextBytes int64) *ChatHandler {
	return &ChatHandler{
		chatService:     chatSvc,
		settingsService: settingsSvc,
		maxContextBytes: maxContextBytes,
	}
}

// GetSettings godoc
// @Summary      Get default connection
// @Description  Returns the connection new sessions start with. The API key is masked.
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  SettingsResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/settings [get]
func (h *ChatHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSettingsResponse(settings))
}

// UpdateSettings godoc
// @Summary      Update default connection
// @Description  Replaces the connection new sessions start with. Existing sessions keep theirs.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        settings  body      UpdateSettingsRequest  true  "New settings"
// @Success      200       {object}  SettingsResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /v1/settings [put]
func (h *ChatHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	settings := &service.Settings{APIURL: req.APIURL, Model: req.Model}
	if req.APIKey != nil {
		settings.APIKey = *req.APIKey
	} else {
		current, err := h.settingsService.Get(r.Context())
		if err != nil {
			respondWithError(w, err)
			return
		}
		settings.APIKey = current.APIKey
	}

	if err := h.settingsService.Save(r.Context(), settings); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSettingsResponse(settings))
}

// CreateSession godoc
// @Summary      Create a session
// @Description  Starts an empty session using the default connection.
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  SessionResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/sessions [post]
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.chatService.CreateSession(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newSessionResponse(sess))
}

// ListSessions godoc
// @Summary      List sessions
// @Tags         Sessions
// @Produce      json
// @Success      200  {array}   SessionResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/sessions [get]
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.ListSessions(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	resp := make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		resp = append(resp, newSessionResponse(sess))
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GetSession godoc
// @Summary      Get a session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [get]
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.chatService.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(sess))
}

// DeleteSession godoc
// @Summary      Delete a session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [delete]
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// SubmitMessage godoc
// @Summary      Ask a question
// @Description  Sends the question with the session history, and optional context, to the chat completion API.
// @Description  On failure the session is unchanged and the upstream error is returned with status 502.
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string                true  "Session ID"
// @Param        message    body      SubmitMessageRequest  true  "Question and optional context"
// @Success      200        {object}  service.Exchange
// @Failure      400        {object}  ErrorResponse
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Failure      502        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/messages [post]
func (h *ChatHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req SubmitMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	exchange, err := h.chatService.Submit(r.Context(), chi.URLParam(r, "sessionID"), req.Question, req.Context)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, exchange)
}

// GetTranscript godoc
// @Summary      Get the conversation
// @Description  Returns the history with assistant messages run through the math formatter.
// @Tags         Messages
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  service.Transcript
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/messages [get]
func (h *ChatHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.chatService.Transcript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transcript)
}

// ClearHistory godoc
// @Summary      Clear the conversation
// @Description  Empties the history and forgets the chat and parent ids.
// @Tags         Messages
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/messages [delete]
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := h.chatService.ClearHistory(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(sess))
}

// NewChat godoc
// @Summary      Start a new chat
// @Description  Creates a chat on the server and binds the session to it, clearing the history.
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string          true   "Session ID"
// @Param        chat       body      NewChatRequest  false  "Chat name"
// @Success      201        {object}  SessionResponse
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      502        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/chats [post]
func (h *ChatHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	var req NewChatRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	sess, err := h.chatService.NewChat(r.Context(), chi.URLParam(r, "sessionID"), req.Name)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newSessionResponse(sess))
}

// GetRequestConfig godoc
// @Summary      Show request configuration
// @Description  Describes the URL, headers, model and ids the next request will use. The key is masked.
// @Description  With format=text the plain-text rendering is returned.
// @Tags         Sessions
// @Produce      json
// @Produce      plain
// @Param        sessionID  path      string  true   "Session ID"
// @Param        format     query     string  false  "json (default) or text"
// @Success      200        {object}  service.RequestConfig
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/request-config [get]
func (h *ChatHandler) GetRequestConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.chatService.RequestConfig(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		respondWithText(w, http.StatusOK, cfg.String())
		return
	}
	respondWithJSON(w, http.StatusOK, cfg)
}

// UploadContext godoc
// @Summary      Read a context file
// @Description  Accepts a UTF-8 .txt file and returns its text for use as context.
// @Tags         Context
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "Plain-text file"
// @Success      200   {object}  ContextUploadResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /v1/context/upload [post]
func (h *ChatHandler) UploadContext(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxContextBytes+64<<10)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, fmt.Errorf("%w: context file is larger than %d bytes", app_errors.ErrValidation, h.maxContextBytes))
			return
		}
		respondWithError(w, fmt.Errorf("%w: a file field named 'file' is required", app_errors.ErrValidation))
		return
	}
	defer func() { _ = file.Close() }()

	text, err := service.ReadContextFile(file, header.Filename, h.maxContextBytes)
	if err != nil {
		respondWithError(w, err)
		return
	}
	slog.Info("Context file uploaded", "filename", header.Filename, "bytes", len(text))
	respondWithJSON(w, http.StatusOK, ContextUploadResponse{
		Filename: header.Filename,
		Bytes:    len(text),
		Context:  text,
	})
}

// FormatText godoc
// @Summary      Format math
// @Description  Converts \( \) and \[ \] delimiters to $ and $$ and wraps known formula fragments.
// @Tags         Format
// @Accept       json
// @Produce      json
// @Param        text  body      FormatRequest  true  "Text to format"
// @Success      200   {object}  FormatResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /v1/format [post]
func (h *ChatHandler) FormatText(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, FormatResponse{Formatted: h.chatService.FormatText(req.Text)})
}
