package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"synergy-debrief"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Content Content
	Redis   Redis
	Game    Game
	WS      WS
	CORS    CORS
}

// Content locates the game document. URL wins over Path when both are set.
type Content struct {
	Path         string        `env:"CONTENT_PATH" envDefault:"content/data.json"`
	URL          string        `env:"CONTENT_URL"`
	FetchTimeout time.Duration `env:"CONTENT_FETCH_TIMEOUT" envDefault:"5s"`
	CacheTTL     time.Duration `env:"CONTENT_CACHE_TTL" envDefault:"10m"`
}

// Redis is optional; an empty address disables the content cache.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
}

// Game groups gameplay constants.
type Game struct {
	RoundSeconds       int           `env:"GAME_ROUND_SECONDS" envDefault:"1200"`
	TickInterval       time.Duration `env:"GAME_TICK_INTERVAL" envDefault:"1s"`
	ChangeTopicSeconds int           `env:"GAME_CHANGE_TOPIC_SECONDS" envDefault:"60"`
	ExtraDebriefCount  int           `env:"GAME_EXTRA_DEBRIEF_COUNT" envDefault:"5"`
	PointsPerCorrect   int           `env:"GAME_POINTS_PER_CORRECT" envDefault:"10"`
	// Seed fixes the random source for every session; 0 seeds each session randomly.
	Seed uint64 `env:"GAME_SEED" envDefault:"0"`
}

// WS tunes play connections.
type WS struct {
	SendQueue   int           `env:"WS_SEND_QUEUE" envDefault:"256"`
	ReadTimeout time.Duration `env:"WS_READ_TIMEOUT" envDefault:"60s"`
}

// CORS holds the origins allowed to open play sessions from a browser.
type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: false}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c *App) Validate() error {
	if c.Content.URL == "" && c.Content.Path == "" {
		return fmt.Errorf("validate config: CONTENT_PATH or CONTENT_URL must be set")
	}
	if c.Game.RoundSeconds <= 0 {
		return fmt.Errorf("validate config: GAME_ROUND_SECONDS must be positive")
	}
	if c.Game.TickInterval <= 0 {
		return fmt.Errorf("validate config: GAME_TICK_INTERVAL must be positive")
	}
	if c.Game.ChangeTopicSeconds < 0 || c.Game.ExtraDebriefCount < 0 || c.Game.PointsPerCorrect < 0 {
		return fmt.Errorf("validate config: game costs and counts must not be negative")
	}
	return nil
}
