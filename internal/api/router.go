package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "qwen-console/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a new chi router with all the application's
// routes. requestTimeout bounds every API request; it should cover the slowest
// upstream call.
func NewRouter(chatHandler *ChatHandler, connectionHandler *ConnectionHandler, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Public Routes ---
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// --- API Version 1 Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		// Upstream calls are bounded by the client timeout; the middleware
		// adds a little slack so the client's error wins.
		r.Use(middleware.Timeout(requestTimeout + 5*time.Second))

		// --- Settings ---
		r.Get("/settings", chatHandler.GetSettings)
		r.Put("/settings", chatHandler.UpdateSettings)

		// --- Sessions ---
		r.Post("/sessions", chatHandler.CreateSession)
		r.Get("/sessions", chatHandler.ListSessions)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", chatHandler.GetSession)
			r.Delete("/", chatHandler.DeleteSession)
			r.Get("/request-config", chatHandler.GetRequestConfig)

			// --- Conversation ---
			r.Post("/messages", chatHandler.SubmitMessage)
			r.Get("/messages", chatHandler.GetTranscript)
			r.Delete("/messages", chatHandler.ClearHistory)
			r.Post("/chats", chatHandler.NewChat)

			// --- Connection ---
			r.Put("/connection", connectionHandler.HandleUpdateConnection)
			r.Post("/connection/test", connectionHandler.HandleTestConnection)
			r.Get("/models", connectionHandler.HandleListModels)
		})

		// --- Utilities ---
		r.Post("/context/upload", chatHandler.UploadContext)
		r.Post("/format", chatHandler.FormatText)
	})

	return r
}
