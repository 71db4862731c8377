package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"grandmaster/internal/ai"
	"grandmaster/internal/config"
	"grandmaster/internal/configstore"
	"grandmaster/internal/db"
	"grandmaster/internal/engine"
	"grandmaster/internal/web"
	"grandmaster/internal/ws"
)

type App struct {
	store *db.Store
	hub   *engine.Hub

	handler    http.Handler
	adminToken string

	closeOnce sync.Once
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	adminToken, created, err := loadOrInitAdminToken(cfg.DataDir, cfg.AdminToken)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("generated admin token", zap.String("dir", cfg.DataDir))
	}

	conf, err := configstore.New(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(cfg.GamesDBPath)
	if err != nil {
		return nil, err
	}

	model, err := newModel(ctx, cfg, log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	hub := engine.NewHub(engine.RunnerDeps{
		Resolver: ai.NewResolver(model, log.Named("ai")),
		Settings: conf,
		Recorder: sqlDB,
		Log:      log.Named("runner"),
	}, cfg.TableTTL)
	hub.Start(ctx)

	wsm := ws.NewManager(hub, cfg.AllowedOrigins, log.Named("ws"))
	h := web.NewHandler(hub, sqlDB, conf, wsm, adminToken, log.Named("web"))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	return &App{
		store:      sqlDB,
		hub:        hub,
		handler:    withCORS(mux, cfg.AllowedOrigins),
		adminToken: adminToken,
	}, nil
}

// newModel returns the Gemini client, or a model that always fails when no
// API key is configured. Tables still run; computer turns report failures.
func newModel(ctx context.Context, cfg config.Config, log *zap.Logger) (ai.Model, error) {
	if cfg.GeminiAPIKey == "" {
		log.Warn("no Gemini API key configured, AI moves will fail")
		return ai.Unavailable{}, nil
	}
	return ai.NewGeminiModel(ctx, ai.GeminiConfig{
		APIKey:     cfg.GeminiAPIKey,
		HTTPClient: &http.Client{Timeout: cfg.ModelTimeout},
	})
}

func withCORS(next http.Handler, origins []string) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
	}
	return cors.New(opts).Handler(next)
}

func (a *App) Router() http.Handler {
	return a.handler
}

func (a *App) AdminToken() string {
	return a.adminToken
}

func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.hub.Stop()
		_ = a.store.Close()
	})
}
