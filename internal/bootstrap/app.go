package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"classify-backend/internal/llm"
	openai "classify-backend/internal/llm/openai"
	"classify-backend/internal/profiles"
	"classify-backend/internal/recommend"
	"classify-backend/internal/services/health"
	"classify-backend/internal/shared/config"
	"classify-backend/internal/shared/server"
	"classify-backend/internal/shared/storage/db"
	"classify-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Dialect        db.Dialect
	Completer      llm.Completer
	Generator      *recommend.Generator
	ProfilesRepo   profiles.Repo
	ProfileService *profiles.Service
	ProfileHandler *profiles.Handler
	HealthService  *health.Service
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, dialect, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer, err := BuildCompleter(cfg)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Dialect:   dialect,
		Completer: completer,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		ProfileHandler: app.ProfileHandler,
		HealthService:  app.HealthService,
	})
	return app, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// BuildCompleter returns the completion client for cfg: OpenAI behind a breaker
// when a key is configured, otherwise a placeholder.
func BuildCompleter(cfg config.Config) (llm.Completer, error) {
	if !cfg.OpenAIConfigured() {
		telemetry.Warn("bootstrap.openai_not_configured", nil)
		return llm.PlaceholderClient{}, nil
	}
	client, err := openai.NewClient(openai.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}
	failures := cfg.LLMBreakerFailures
	if failures < 0 {
		failures = 0
	}
	return llm.NewBreaker(client, llm.BreakerSettings{
		Name:     "openai",
		Failures: uint32(failures),
		Cooldown: cfg.LLMBreakerCooldown,
	}), nil
}

// GeneratorOptions maps config onto generator sampling settings.
func GeneratorOptions(cfg config.Config) recommend.Options {
	return recommend.Options{
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, db.Dialect, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, dialect, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return nil, "", fmt.Errorf("connect database: %w", err)
	}
	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		_ = sqlDB.Close()
		return nil, "", fmt.Errorf("run migrations: %w", err)
	}
	telemetry.Info("bootstrap.database_ready", map[string]any{"dialect": string(dialect)})
	return sqlDB, dialect, nil
}

func buildServices(app *App) {
	var repo profiles.Repo
	if app.DB != nil {
		repo = profiles.NewSQLRepo(app.DB)
	} else {
		repo = profiles.NewMemoryRepo()
	}

	app.Generator = recommend.NewGenerator(app.Completer, GeneratorOptions(app.Config))
	app.ProfilesRepo = repo
	app.ProfileService = &profiles.Service{
		Repo:       repo,
		Generator:  app.Generator,
		Configured: app.Config.OpenAIConfigured(),
	}
	app.ProfileHandler = profiles.NewHandler(app.ProfileService)
	app.HealthService = health.NewService(app.Config.OpenAIConfigured())
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
