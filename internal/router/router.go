package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"llamadesk-backend/internal/handlers"
	"llamadesk-backend/internal/middleware"
	"llamadesk-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authEnabled bool,
	historyMode bool,
	chatHandler *handlers.ChatHandler,
	modelHandler *handlers.ModelCatalogHandler,
	sessionHandler *handlers.SessionHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Token endpoint rate limiter (10 req/min per IP)
	tokenLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Session Token (public, only when auth is enabled) ────
		if authEnabled {
			r.Route("/session", func(r chi.Router) {
				r.Use(tokenLimiter.Middleware)
				r.Post("/token", sessionHandler.IssueToken)
			})
		}

		// ──── UI-facing API ────
		r.Group(func(r chi.Router) {
			if authEnabled {
				r.Use(jwtAuth.Middleware)
			}

			r.Post("/translate", chatHandler.Translate)
			r.Post("/chat", chatHandler.AskLLM)
			r.Get("/models", modelHandler.ListModels)

			// History endpoints only exist in the stateful variant.
			if historyMode {
				r.Get("/chat/history", chatHandler.GetHistory)
				r.Delete("/chat/history", chatHandler.ClearHistory)
			}
		})

		// ──── WebSocket (authenticates itself via token query param) ────
		if wsHub != nil {
			r.Get("/ws", wsHub.HandleWebSocket)
		}
	})

	return r
}
