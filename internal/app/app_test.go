package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwen-console/internal/config"
)

func newTestConfig(t *testing.T, apiURL string) *config.Config {
	return &config.Config{
		DatabasePath:    filepath.Join(t.TempDir(), "data", "test.db"),
		APIURL:          apiURL,
		DefaultModel:    "qwen-max",
		RequestTimeout:  5 * time.Second,
		ContextPrompt:   config.DefaultContextPrompt,
		MathFragments:   []string{"K_{газX}"},
		MaxContextBytes: 1024,
		LogLevel:        "DEBUG",
	}
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(newTestConfig(t, "http://localhost:3264/api"))
	require.NoError(t, err)
	require.NotNil(t, app)
	defer func() { require.NoError(t, app.DB.Close()) }()

	assert.NotNil(t, app.DB)
	assert.NotNil(t, app.Server)
	assert.Equal(t, ":8000", app.Server.Addr)
}

func TestNewApp_EndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/status":
			_, _ = w.Write([]byte(`{"authenticated":true}`))
		case "/api/models":
			_, _ = w.Write([]byte(`{"data":[{"id":"qwen-turbo"},{"id":"qwen-max-latest"}]}`))
		case "/api/chat/completions":
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"\\(K_{газX}\\) and K_{газX}"}}],"chatId":"c1","parentId":"p1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	app, err := NewApp(newTestConfig(t, upstream.URL+"/api"))
	require.NoError(t, err)
	defer func() { require.NoError(t, app.DB.Close()) }()

	srv := httptest.NewServer(app.Server.Handler)
	defer srv.Close()

	// Create a session.
	resp, err := http.Post(srv.URL+"/api/v1/sessions", "application/json", nil)
	require.NoError(t, err)
	var sess struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Test the connection; the model is re-selected.
	resp, err = http.Post(srv.URL+"/api/v1/sessions/"+sess.ID+"/connection/test", "application/json", nil)
	require.NoError(t, err)
	var report struct {
		SelectedModel string `json:"selected_model"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	_ = resp.Body.Close()
	assert.Equal(t, "qwen-max-latest", report.SelectedModel)

	// Ask a question.
	resp, err = http.Post(srv.URL+"/api/v1/sessions/"+sess.ID+"/messages", "application/json",
		strings.NewReader(`{"question":"q"}`))
	require.NoError(t, err)
	var exchange struct {
		Rendered string `json:"rendered"`
		ChatID   string `json:"chat_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&exchange))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "$K_{газX}$ and $K_{газX}$", exchange.Rendered)
	assert.Equal(t, "c1", exchange.ChatID)

	// The probe only logs; it must not panic against a live server.
	app.probeAPI(context.Background())
}

func TestNewApp_SettingsSurviveRestart(t *testing.T) {
	cfg := newTestConfig(t, "http://first/api")

	first, err := NewApp(cfg)
	require.NoError(t, err)
	require.NoError(t, first.DB.Close())

	cfg.APIURL = "http://second/api"
	second, err := NewApp(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, second.DB.Close()) }()

	assert.Equal(t, "http://first/api", second.settings.APIURL)
}
