package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"qwen-console/internal/api"
	"qwen-console/internal/config"
	"qwen-console/internal/database"
	"qwen-console/internal/llm"
	"qwen-console/internal/mathfmt"
	"qwen-console/internal/repository"
	"qwen-console/internal/service"
)

// App holds the wired application.
type App struct {
	DB     *sql.DB
	Server *http.Server
	Client llm.Client

	settings *service.Settings
}

// NewApp opens the database, seeds the settings and wires every layer. It does
// not start listening.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)

	settingsService := service.NewSettingsService(db)
	appSettings, err := settingsService.InitAndGet(context.Background(), &service.Settings{
		APIURL: cfg.APIURL,
		APIKey: cfg.APIKey,
		Model:  cfg.DefaultModel,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize application settings: %w", err)
	}
	slog.Info("Loaded application settings", "api_url", appSettings.APIURL, "model", appSettings.Model)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxContext := cfg.MaxContextBytes
	if maxContext <= 0 {
		maxContext = 1 << 20
	}

	client := llm.NewClient(llm.NewHTTPClient(timeout))
	repo := repository.NewMemoryRepository()
	formatter := mathfmt.New(cfg.MathFragments)

	chatService := service.NewChatService(repo, client, settingsService, formatter, service.ContextPrompt(cfg.ContextPrompt))
	connectionService := service.NewConnectionService(repo, client)

	chatHandler := api.NewChatHandler(chatService, settingsService, maxContext)
	connectionHandler := api.NewConnectionHandler(connectionService)
	router := api.NewRouter(chatHandler, connectionHandler, timeout)

	port := cfg.AppPort
	if port == 0 {
		port = 8000
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{DB: db, Server: server, Client: client, settings: appSettings}, nil
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to start application", "error", err)
		return 1
	}
	defer func() {
		if err := app.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	go app.probeAPI(context.Background())

	slog.Info("Starting server", "addr", app.Server.Addr)
	if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

// probeAPI checks the default API once at startup. The server starts either
// way; the API may come up later or each session may point somewhere else.
func (a *App) probeAPI(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ep := a.settings.Connection().Endpoint()
	status, err := a.Client.Status(ctx, ep)
	if err != nil {
		slog.Warn("Default API is not reachable yet", "api_url", ep.BaseURL, "error", err)
		return
	}
	if status.Authenticated != nil && !*status.Authenticated {
		slog.Warn("Default API reports the key as not authenticated", "api_url", ep.BaseURL)
		return
	}
	slog.Info("Default API is ready.", "api_url", ep.BaseURL)
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
