package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/synergy-debrief/internal/config"
	"github.com/gokatarajesh/synergy-debrief/internal/content"
	"github.com/gokatarajesh/synergy-debrief/internal/game"
	"github.com/gokatarajesh/synergy-debrief/internal/game/roundtwo"
	"github.com/gokatarajesh/synergy-debrief/internal/logging"
	"github.com/gokatarajesh/synergy-debrief/internal/metrics"
	"github.com/gokatarajesh/synergy-debrief/internal/play"
	"github.com/gokatarajesh/synergy-debrief/internal/server"
	ws "github.com/gokatarajesh/synergy-debrief/pkg/http/ws"
)

// Application aggregates shared infrastructure (content, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	hub   *ws.Hub
	http  *http.Server
}

// New bootstraps the logger, optional Redis cache, content store and HTTP server.
// Content that fails to load or validate aborts startup.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	m := metrics.New(prometheus.DefaultRegisterer)

	var (
		redisClient *redis.Client
		docCache    content.DocumentCache
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if cfg.Content.URL != "" {
			docCache = content.NewCache(redisClient, cfg.Content.CacheTTL)
		}
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; content cache disabled")
	}

	store, err := content.NewLoader(contentSource(cfg.Content), docCache, logger).
		OnLoad(func(origin string) { m.ContentLoads.WithLabelValues(origin).Inc() }).
		Load(ctx)
	if err != nil {
		closeRedis(redisClient, logger)
		return nil, fmt.Errorf("load content: %w", err)
	}

	hub := ws.NewHub(logger)
	playHandler := play.NewHandler(store, hub, m, server.NewWSUpgrader(cfg.CORS.AllowedOrigins), play.Options{
		Game: game.Options{
			RoundSeconds:       cfg.Game.RoundSeconds,
			TickInterval:       cfg.Game.TickInterval,
			ChangeTopicSeconds: cfg.Game.ChangeTopicSeconds,
			ScoringConfig: roundtwo.ScoringConfig{
				PointsPerCorrect: cfg.Game.PointsPerCorrect,
				ExtraCount:       cfg.Game.ExtraDebriefCount,
			},
			Seed: cfg.Game.Seed,
		},
		Conn: ws.ConnectionOptions{
			SendQueue:   cfg.WS.SendQueue,
			ReadTimeout: cfg.WS.ReadTimeout,
		},
	}, logger)

	// A typed nil *redis.Client would not compare equal to nil inside the server.
	var cache redis.Cmdable
	if redisClient != nil {
		cache = redisClient
	}
	apiServer := server.NewHTTPServer(cfg, logger, store, cache, playHandler.HandleWebSocket)

	return &Application{
		cfg:    cfg,
		logger: logger,
		redis:  redisClient,
		hub:    hub,
		http:   apiServer,
	}, nil
}

func contentSource(cfg config.Content) content.Source {
	if cfg.URL != "" {
		return content.NewHTTPSource(cfg.URL, &http.Client{Timeout: cfg.FetchTimeout})
	}
	return content.FileSource{Path: cfg.Path}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		closeRedis(a.redis, a.logger)
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown.
	a.hub.Shutdown("server shutting down")
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	closeRedis(a.redis, a.logger)
	a.logger.Info().Msg("shutdown complete")
	return nil
}

func closeRedis(client *redis.Client, logger zerolog.Logger) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		logger.Error().Err(err).Msg("redis shutdown error")
	}
}
