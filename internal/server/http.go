package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/synergy-debrief/internal/config"
	"github.com/gokatarajesh/synergy-debrief/internal/content"
	"github.com/gokatarajesh/synergy-debrief/internal/logging"
	httperrors "github.com/gokatarajesh/synergy-debrief/pkg/http/errors"
)

// NewWSUpgrader builds the play upgrader. Requests without an Origin header (non-browser clients) are accepted;
// browser origins must be listed, or the list must contain "*".
func NewWSUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = struct{}{}
	}
	_, wildcard := allowed["*"]

	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || wildcard {
				return true
			}
			_, ok := allowed[strings.TrimRight(origin, "/")]
			return ok
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// NewMux wires the API routes. redis may be nil when no cache is configured; playHandler may be nil
// while the content store is unavailable.
func NewMux(logger zerolog.Logger, store *content.Store, redis redis.Cmdable, playHandler http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, redis); err != nil {
			logging.FromContext(ctx).Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "upstream error")
			return
		}
		cache := "disabled"
		if redis != nil {
			cache = "ok"
		}
		writeJSON(w, map[string]interface{}{"pong": true, "cache": cache})
	})

	mux.HandleFunc("/v1/content", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httperrors.RespondMethodNotAllowed(w, http.MethodGet)
			return
		}
		if store == nil {
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "content not loaded")
			return
		}
		writeJSON(w, store.Summary())
	})

	if playHandler != nil {
		mux.HandleFunc("/ws/play", playHandler)
	} else {
		mux.HandleFunc("/ws/play", func(w http.ResponseWriter, r *http.Request) {
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "play sessions unavailable")
		})
	}

	return mux
}

// NewHTTPServer builds the API server around NewMux.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, store *content.Store, redis redis.Cmdable, playHandler http.HandlerFunc) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewMux(logger, store, redis, playHandler),
	}
}

func pingDependencies(ctx context.Context, redis redis.Cmdable) error {
	if redis == nil {
		return nil
	}
	return redis.Ping(ctx).Err()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
