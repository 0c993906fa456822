// Package app wires configuration, storage, and the resolution pipeline
// into a single container used by the CLI commands and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ronak026/chatbot/db"
	"github.com/ronak026/chatbot/internal/chatlog"
	"github.com/ronak026/chatbot/internal/config"
	"github.com/ronak026/chatbot/internal/generator"
	"github.com/ronak026/chatbot/internal/knowledge"
	"github.com/ronak026/chatbot/internal/quota"
	"github.com/ronak026/chatbot/internal/resolver"
)

// App is the application container. Construct it with Setup and release
// its resources with Close.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DBPool    *pgxpool.Pool
	Knowledge *knowledge.Store
	ChatLog   *chatlog.Store
	Quota     *quota.Store
	Resolver  *resolver.Resolver

	// Genkit is non-nil only when a Gemini API key is configured.
	Genkit *genkit.Genkit
}

// Setup initializes the application: it runs migrations, opens the
// connection pool, and builds the resolver with whatever generator the
// configuration allows. On error everything already initialized is
// released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := provideDBPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	a.Knowledge = knowledge.New(pool, logger)
	a.ChatLog = chatlog.New(pool, logger)
	a.Quota = quota.New(pool, cfg.DailyQuota, logger)

	gen, g, err := provideGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	rcfg := resolver.Config{
		Store:  a.Knowledge,
		Quota:  a.Quota,
		Logger: logger,
	}
	// A nil interface with a non-nil type breaks the resolver's
	// "generator disabled" check, so only assign when one exists.
	if gen != nil {
		rcfg.Generator = gen
	}
	res, err := resolver.New(rcfg)
	if err != nil {
		return nil, fmt.Errorf("creating resolver: %w", err)
	}
	a.Resolver = res

	return a, nil
}

// Close releases all resources held by the App. Safe to call on a
// partially initialized App.
func (a *App) Close() error {
	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Debug("database pool closed")
	}
	return nil
}

// provideDBPool runs pending migrations and opens a pgx connection pool
// with conservative sizing for a single-instance deployment.
func provideDBPool(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	connURL := cfg.PostgresURL()

	if err := db.Migrate(connURL, logger); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

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

// provideGenerator initializes Genkit with the GoogleAI plugin and builds
// the Gemini generator. Without an API key generation stays disabled and
// the resolver answers unknown questions with its static fallback.
func provideGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*generator.Gemini, *genkit.Genkit, error) {
	if !cfg.GeneratorEnabled() {
		logger.Info("no Gemini API key configured, generation disabled")
		return nil, nil, nil
	}

	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: cfg.GeminiAPIKey}),
	)

	gen, err := generator.New(generator.Config{
		Genkit:    g,
		ModelName: cfg.ModelName,
		Timeout:   cfg.GeneratorTimeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating generator: %w", err)
	}

	logger.Info("generator enabled", "model", cfg.ModelName)
	return gen, g, nil
}
