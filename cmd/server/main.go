package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"llamadesk-backend/internal/config"
	"llamadesk-backend/internal/database"
	"llamadesk-backend/internal/handlers"
	"llamadesk-backend/internal/middleware"
	"llamadesk-backend/internal/ollama"
	"llamadesk-backend/internal/repository"
	"llamadesk-backend/internal/router"
	"llamadesk-backend/internal/services"
	"llamadesk-backend/internal/websocket"
	"llamadesk-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Llamadesk Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Check the Ollama Server ────
	ollamaClient := ollama.NewClient(cfg.OllamaURL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := ollamaClient.CheckRunning(ctx); err != nil {
		log.Printf("⚠ Ollama not reachable at %s: %v (chat requests will fail until it is up)", cfg.OllamaURL, err)
	} else {
		log.Printf("✓ Ollama reachable at %s", cfg.OllamaURL)
	}
	cancel()

	// ──── Step 3: Optional Persistence Add-on (Postgres + Redis) ────
	var (
		queueClient *redis.Client
		wsHub       *websocket.Hub
		workerPool  *worker.Pool
		jwtAuth     *middleware.JWTAuth
	)

	if cfg.AuthEnabled() {
		jwtAuth = middleware.NewJWTAuth(cfg.JWTSecret)
	}

	if cfg.PersistenceEnabled {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		log.Println("✓ Redis connected")

		if err := database.RunMigrations(pool, "migrations"); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		queueClient = redisClients.Queue

		convRepo := repository.NewConversationRepo(pool)
		workerPool = worker.NewPool(redisClients.Queue, convRepo, cfg.WorkerCount)
		workerPool.Start()
		log.Printf("✓ Persistence worker pool started (%d goroutines)", cfg.WorkerCount)

		wsHub = websocket.NewHub(redisClients.PubSub, jwtAuth)
		log.Println("✓ WebSocket hub started")
	} else {
		log.Println("• Persistence disabled, running in-memory only")
	}

	// ──── Step 4: Initialize Services ────
	chatService := services.NewChatService(ollamaClient, cfg.DefaultModel, queueClient)
	catalogService := services.NewModelCatalogService(ollamaClient)

	var sessionHandler *handlers.SessionHandler
	if cfg.AuthEnabled() {
		sessionService, err := services.NewSessionService(cfg.LocalAPIKey, jwtAuth)
		if err != nil {
			log.Fatalf("✗ Session service initialization failed: %v", err)
		}
		sessionHandler = handlers.NewSessionHandler(sessionService)
		log.Println("✓ Local API auth enabled")
	} else {
		log.Println("• Local API auth disabled")
	}

	// ──── Step 5: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(chatService, cfg.HistoryMode)
	modelHandler := handlers.NewModelCatalogHandler(catalogService)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		cfg.AuthEnabled(),
		cfg.HistoryMode,
		chatHandler,
		modelHandler,
		sessionHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // a slow local model can take minutes
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		if workerPool != nil {
			workerPool.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	mode := "stateless"
	if cfg.HistoryMode {
		mode = "stateful history"
	}
	log.Printf("✓ Llamadesk Backend ready on http://localhost:%s (%s mode)", cfg.Port, mode)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
