// Package app assembles the assistant: configuration, logging,
// database, Genkit, knowledge store, sessions, the chat orchestrator
// and the HTTP API server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/cloudwalk/assistant/db"
	"github.com/cloudwalk/assistant/internal/api"
	"github.com/cloudwalk/assistant/internal/chat"
	"github.com/cloudwalk/assistant/internal/config"
	"github.com/cloudwalk/assistant/internal/intent"
	"github.com/cloudwalk/assistant/internal/knowledge"
	"github.com/cloudwalk/assistant/internal/language"
	"github.com/cloudwalk/assistant/internal/log"
	"github.com/cloudwalk/assistant/internal/session"
)

// Outbound model-call throttle, shared by every session.
const (
	llmRateLimit = 10
	llmRateBurst = 30
)

// App is the application container.
type App struct {
	Config    *config.Config
	Logger    log.Logger
	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	Pool      *pgxpool.Pool
	Knowledge *knowledge.Store
	Sessions  *session.Manager
	Detector  *language.Detector
	Assistant *chat.Assistant
	Server    *api.Server
}

// Setup creates and initializes the application. On failure every
// resource initialized so far is released before returning.
func Setup(ctx context.Context, cfg *config.Config) (_ *App, retErr error) {
	a := &App{Config: cfg}

	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	a.Logger = newLogger(cfg)

	pool, err := newDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	a.Genkit = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	a.Embedder = googlegenai.GoogleAIEmbedder(a.Genkit, cfg.EmbedderModel)

	a.Knowledge = knowledge.New(knowledge.NewDB(pool), a.Embedder, a.Logger)
	a.Sessions = session.NewManager(cfg.DefaultLanguage, a.Logger)
	a.Detector = language.NewDetector(cfg.DefaultLanguage)

	style, ok := config.Style(cfg.ResponseStyle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidResponseStyle, cfg.ResponseStyle)
	}

	a.Assistant, err = chat.New(chat.Config{
		Genkit:        a.Genkit,
		Knowledge:     a.Knowledge,
		Detector:      a.Detector,
		Classifier:    intent.NewClassifier(),
		Logger:        a.Logger,
		ModelName:     cfg.ModelName,
		MaxTokens:     cfg.MaxTokens,
		Brand:         cfg.Brand,
		Style:         style,
		RetrievalTopK: cfg.RetrievalTopK,
		RateLimiter:   rate.NewLimiter(llmRateLimit, llmRateBurst),
	})
	if err != nil {
		return nil, fmt.Errorf("creating assistant: %w", err)
	}

	a.Server, err = api.NewServer(api.ServerConfig{
		Logger:      a.Logger,
		Assistant:   a.Assistant,
		Sessions:    a.Sessions,
		Knowledge:   a.Knowledge,
		Detector:    a.Detector,
		Pool:        pool,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
		RateRPS:     cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating api server: %w", err)
	}

	return a, nil
}

// Seed loads the built-in knowledge documents, skipping any that are
// already present. Returns the number of documents inserted.
func (a *App) Seed(ctx context.Context) (int, error) {
	return a.Knowledge.Seed(ctx)
}

// Close releases application resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
		if a.Logger != nil {
			a.Logger.Info("database pool closed")
		}
	}
}

func newLogger(cfg *config.Config) log.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON})
}

// newDBPool runs migrations, then opens and verifies the connection
// pool.
func newDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
