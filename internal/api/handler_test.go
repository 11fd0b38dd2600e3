// Black-box tests: only the exported API of the package is used.
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"qwen-console/internal/api"
	app_errors "qwen-console/internal/errors"
	"qwen-console/internal/interfaces/mocks"
	"qwen-console/internal/llm"
	"qwen-console/internal/model"
	"qwen-console/internal/service"
)

const testMaxContextBytes = 1024

// setupChatHandler builds a handler whose services are mocks.
func setupChatHandler(t *testing.T) (*api.ChatHandler, *mocks.MockChatService, *mocks.MockSettingsService) {
	mockChatSvc := mocks.NewMockChatService(t)
	mockSettingsSvc := mocks.NewMockSettingsService(t)
	handler := api.NewChatHandler(mockChatSvc, mockSettingsSvc, testMaxContextBytes)
	return handler, mockChatSvc, mockSettingsSvc
}

// addChiURLParams simulates how the chi router injects URL parameters
// (e.g. `{sessionID}`) into the request's context.
func addChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for key, value := range params {
		chiCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

func testSession() *model.Session {
	return model.NewSession("sess-1", model.Connection{
		APIURL: "http://localhost:3264/api",
		APIKey: "sk-1234567890",
		Model:  "qwen-max",
	})
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestChatHandler_GetSettings(t *testing.T) {
	t.Run("Success - Key is masked", func(t *testing.T) {
		// ARRANGE
		handler, _, mockSettingsSvc := setupChatHandler(t)
		mockSettingsSvc.On("Get", mock.Anything).Return(&service.Settings{
			APIURL: "http://localhost:3264/api",
			APIKey: "sk-1234567890",
			Model:  "qwen-max",
		}, nil).Once()

		// ACT
		req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
		rr := httptest.NewRecorder()
		handler.GetSettings(rr, req)

		// ASSERT
		assert.Equal(t, http.StatusOK, rr.Code)
		var resp api.SettingsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "********7890", resp.APIKey)
		assert.True(t, resp.APIKeySet)
		assert.NotContains(t, rr.Body.String(), "sk-1234567890")
	})

	t.Run("Failure", func(t *testing.T) {
		// ARRANGE
		handler, _, mockSettingsSvc := setupChatHandler(t)
		mockSettingsSvc.On("Get", mock.Anything).Return(nil, app_errors.ErrInternal).Once()

		// ACT
		req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
		rr := httptest.NewRecorder()
		handler.GetSettings(rr, req)

		// ASSERT
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestChatHandler_UpdateSettings(t *testing.T) {
	t.Run("Success - Missing key keeps the stored one", func(t *testing.T) {
		handler, _, mockSettingsSvc := setupChatHandler(t)
		mockSettingsSvc.On("Get", mock.Anything).Return(&service.Settings{APIKey: "stored-key"}, nil).Once()
		mockSettingsSvc.On("Save", mock.Anything, mock.MatchedBy(func(s *service.Settings) bool {
			return s.APIURL == "http://qwen.local/api" && s.Model == "qwen-plus" && s.APIKey == "stored-key"
		})).Return(nil).Once()

		body := `{"api_url":"http://qwen.local/api","model":"qwen-plus"}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Success - Empty key removes it", func(t *testing.T) {
		handler, _, mockSettingsSvc := setupChatHandler(t)
		mockSettingsSvc.On("Save", mock.Anything, mock.MatchedBy(func(s *service.Settings) bool {
			return s.APIKey == ""
		})).Return(nil).Once()

		body := `{"api_url":"http://qwen.local/api","api_key":"","model":"qwen-plus"}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"api_key_set":false`)
	})

	t.Run("Failure - Validation error", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		body := `{"api_url":"not a url","model":""}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		msg := decodeError(t, rr)
		assert.Contains(t, msg, "Field 'api_url' failed on the 'url' tag")
		assert.Contains(t, msg, "Field 'model' failed on the 'required' tag")
	})

	t.Run("Failure - Malformed JSON", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"api_url":`))
		rr := httptest.NewRecorder()
		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestChatHandler_Sessions(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("CreateSession", mock.Anything).Return(testSession(), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
		rr := httptest.NewRecorder()
		handler.CreateSession(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp api.SessionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "sess-1", resp.ID)
		assert.Equal(t, "********7890", resp.Connection.APIKey)
		assert.NotNil(t, resp.History)
	})

	t.Run("List", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("ListSessions", mock.Anything).Return([]*model.Session{testSession()}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
		rr := httptest.NewRecorder()
		handler.ListSessions(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp []api.SessionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
	})

	t.Run("Get - Not Found", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("GetSession", mock.Anything, "missing").Return(nil, app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/missing", nil)
		req = addChiURLParams(req, map[string]string{"sessionID": "missing"})
		rr := httptest.NewRecorder()
		handler.GetSession(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("DeleteSession", mock.Anything, "sess-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/sess-1", nil)
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.DeleteSession(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})
}

func TestChatHandler_SubmitMessage(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// ARRANGE
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("Submit", mock.Anything, "sess-1", "What is x?", "x is 1").
			Return(&service.Exchange{Question: "What is x?", Answer: "\\(1\\)", Rendered: "$1$", ChatID: "c1"}, nil).Once()

		// ACT
		body := `{"question":"What is x?","context":"x is 1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/messages", strings.NewReader(body))
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.SubmitMessage(rr, req)

		// ASSERT
		assert.Equal(t, http.StatusOK, rr.Code)
		var resp service.Exchange
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "$1$", resp.Rendered)
		assert.Equal(t, "c1", resp.ChatID)
	})

	t.Run("Failure - Empty question", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("Submit", mock.Anything, "sess-1", "", "").
			Return(nil, fmt.Errorf("%w: please enter a question", app_errors.ErrValidation)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/messages", strings.NewReader(`{"question":""}`))
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.SubmitMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr), "please enter a question")
	})

	t.Run("Failure - Upstream error carries the status code", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		upstream := &llm.StatusError{Op: "chat completion", StatusCode: 500, Body: "model overloaded"}
		mockChatSvc.On("Submit", mock.Anything, "sess-1", "q", "").
			Return(nil, fmt.Errorf("%w: %w", app_errors.ErrUpstream, upstream)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/messages", strings.NewReader(`{"question":"q"}`))
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.SubmitMessage(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		msg := decodeError(t, rr)
		assert.Contains(t, msg, "HTTP 500")
		assert.Contains(t, msg, "model overloaded")
	})

	t.Run("Failure - Conflict", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("Submit", mock.Anything, "sess-1", "q", "").Return(nil, app_errors.ErrConflict).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/messages", strings.NewReader(`{"question":"q"}`))
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.SubmitMessage(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Failure - Unknown field", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/messages", strings.NewReader(`{"content":"q"}`))
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.SubmitMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestChatHandler_ClearHistoryAndNewChat(t *testing.T) {
	t.Run("Clear", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("ClearHistory", mock.Anything, "sess-1").Return(testSession(), nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/sess-1/messages", nil)
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.ClearHistory(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("New chat without body", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		sess := testSession()
		sess.ChatID = "new-chat"
		mockChatSvc.On("NewChat", mock.Anything, "sess-1", "").Return(sess, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/chats", nil)
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.NewChat(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"chat_id":"new-chat"`)
	})

	t.Run("New chat upstream failure", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("NewChat", mock.Anything, "sess-1", "Research").
			Return(nil, fmt.Errorf("%w: %w", app_errors.ErrUpstream, errors.New("create chat: HTTP 500: boom"))).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/chats", strings.NewReader(`{"name":"Research"}`))
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.NewChat(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, decodeError(t, rr), "500")
	})

	t.Run("New chat with a rejected key", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("NewChat", mock.Anything, "sess-1", "Research").
			Return(nil, fmt.Errorf("%w: %w: %w", app_errors.ErrUpstream, app_errors.ErrPermission,
				errors.New("create chat: HTTP 401: invalid key"))).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/chats", strings.NewReader(`{"name":"Research"}`))
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.NewChat(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, decodeError(t, rr), "HTTP 401")
	})
}

func TestChatHandler_GetTranscript(t *testing.T) {
	handler, mockChatSvc, _ := setupChatHandler(t)
	mockChatSvc.On("Transcript", mock.Anything, "sess-1").Return(&service.Transcript{
		SessionID: "sess-1",
		Messages: []service.RenderedMessage{
			{Role: model.RoleAssistant, Content: "\\[a\\]", Rendered: "$$a$$"},
		},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-1/messages", nil)
	req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
	rr := httptest.NewRecorder()
	handler.GetTranscript(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"rendered":"$$a$$"`)
}

func TestChatHandler_GetRequestConfig(t *testing.T) {
	cfg := service.NewRequestConfig(testSession())

	t.Run("JSON", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("RequestConfig", mock.Anything, "sess-1").Return(cfg, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-1/request-config", nil)
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.GetRequestConfig(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"chat_id":null`)
		assert.NotContains(t, rr.Body.String(), "sk-1234567890")
	})

	t.Run("Text", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("RequestConfig", mock.Anything, "sess-1").Return(cfg, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/sess-1/request-config?format=text", nil)
		req = addChiURLParams(req, map[string]string{"sessionID": "sess-1"})
		rr := httptest.NewRecorder()
		handler.GetRequestConfig(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
		assert.Contains(t, rr.Body.String(), "Current Chat ID: None")
	})
}

func newUploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/context/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestChatHandler_UploadContext(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		rr := httptest.NewRecorder()
		handler.UploadContext(rr, newUploadRequest(t, "notes.txt", []byte("Плотность газа 0.7")))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp api.ContextUploadResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "notes.txt", resp.Filename)
		assert.Equal(t, "Плотность газа 0.7", resp.Context)
	})

	t.Run("Failure - Not a text file", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		rr := httptest.NewRecorder()
		handler.UploadContext(rr, newUploadRequest(t, "notes.pdf", []byte("%PDF")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Too large", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		rr := httptest.NewRecorder()
		handler.UploadContext(rr, newUploadRequest(t, "big.txt", bytes.Repeat([]byte("a"), testMaxContextBytes+1)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr), "larger than")
	})

	t.Run("Failure - No file", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/context/upload", strings.NewReader(""))
		rr := httptest.NewRecorder()
		handler.UploadContext(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestChatHandler_FormatText(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockChatSvc, _ := setupChatHandler(t)
		mockChatSvc.On("FormatText", "\\(x\\)").Return("$x$").Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/format", strings.NewReader(`{"text":"\\(x\\)"}`))
		rr := httptest.NewRecorder()
		handler.FormatText(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"formatted":"$x$"}`, rr.Body.String())
	})

	t.Run("Failure - Missing text", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/format", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		handler.FormatText(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
