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

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"chat-widget/backend/internal/api"
	"chat-widget/backend/internal/config"
	"chat-widget/backend/internal/database"
	"chat-widget/backend/internal/llm"
	"chat-widget/backend/internal/repository"
	"chat-widget/backend/internal/service"
)

// App is the fully wired application.
type App struct {
	Server *http.Server
	// DB and Redis are set only when the matching history store is selected.
	DB    *sql.DB
	Redis *redis.Client
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
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer app.Close()

	slog.Info("Starting server",
		"port", cfg.AppPort,
		"model", cfg.Model,
		"history_source", cfg.HistorySource,
		"history_store", cfg.HistoryStore,
		"history_limit", cfg.HistoryLimit,
	)
	if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

// NewApp builds the dependency graph described by cfg without starting the server.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg.GroqAPIKey == "" {
		slog.Warn("GROQ_API_KEY is not set; every completion request will fail authentication.")
	}

	app := &App{}

	var store repository.HistoryStore
	if cfg.HistorySource == config.HistorySourceServer {
		var err error
		store, err = app.newHistoryStore(cfg)
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	provider := llm.NewGroqProvider(cfg.GroqAPIURL, cfg.GroqAPIKey)
	chatService := service.NewChatService(provider, store, service.Options{
		Model:         cfg.Model,
		SystemPrompt:  cfg.SystemPrompt,
		HistoryLimit:  cfg.HistoryLimit,
		HistorySource: service.HistorySource(cfg.HistorySource),
		HistoryKey:    cfg.HistoryKey,
		MaxTokens:     cfg.MaxTokens,
		Temperature:   cfg.Temperature,
		TopP:          cfg.TopP,
	})

	chatHandler := api.NewChatHandler(chatService)
	router := api.NewRouter(chatHandler)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return app, nil
}

func (a *App) newHistoryStore(cfg *config.Config) (repository.HistoryStore, error) {
	switch cfg.HistoryStore {
	case config.HistoryStoreRedis:
		a.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("Successfully connected to Redis.", "addr", cfg.RedisAddr)
		return repository.NewRedisRepository(a.Redis, cfg.HistoryTTL), nil

	case config.HistoryStoreSQLite:
		db, err := database.InitDB(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		if err := database.ResetHistory(context.Background(), db); err != nil {
			return nil, err
		}
		slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)
		return repository.NewSQLiteRepository(db), nil

	default:
		return repository.NewMemoryRepository(), nil
	}
}

// Close releases the connections opened by NewApp.
func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error("Failed to close redis connection", "error", err)
		}
	}
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
