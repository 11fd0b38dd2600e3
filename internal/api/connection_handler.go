package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"qwen-console/internal/interfaces"
	"qwen-console/internal/model"
)

// ConnectionHandler handles HTTP requests for session connections and models.
type ConnectionHandler struct {
	service interfaces.ConnectionService
}

func NewConnectionHandler(svc interfaces.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: svc}
}

// ModelsResponse lists the model ids an API offers.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// HandleUpdateConnection godoc
// @Summary      Change a session's connection
// @Description  Sets the API URL, key and model of one session. History and chat ids are kept. A missing api_key keeps the current key.
// @Tags         Connection
// @Accept       json
// @Produce      json
// @Param        sessionID   path      string                   true  "Session ID"
// @Param        connection  body      UpdateConnectionRequest  true  "Connection"
// @Success      200         {object}  SessionResponse
// @Failure      400         {object}  ErrorResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/connection [put]
func (h *ConnectionHandler) HandleUpdateConnection(w http.ResponseWriter, r *http.Request) {
	var req UpdateConnectionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	sess, err := h.service.UpdateConnection(r.Context(), chi.URLParam(r, "sessionID"), model.ConnectionUpdate{
		APIURL: req.APIURL,
		APIKey: req.APIKey,
		Model:  req.Model,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(sess))
}

// HandleTestConnection godoc
// @Summary      Test a session's connection
// @Description  Calls the status endpoint, then fetches the models and re-selects the session's model.
// @Description  A failing model list is reported in models_error without failing the test.
// @Tags         Connection
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  service.ConnectionReport
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      502        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/connection/test [post]
func (h *ConnectionHandler) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Test(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// HandleListModels godoc
// @Summary      List models
// @Description  Lists the models offered by the session's API without changing the session.
// @Tags         Connection
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  ModelsResponse
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      502        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/models [get]
func (h *ConnectionHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.service.ListModels(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	if models == nil {
		models = []string{}
	}
	respondWithJSON(w, http.StatusOK, ModelsResponse{Models: models})
}
