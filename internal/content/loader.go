package content

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Loader resolves a Store from a Source, consulting an optional cache first.
type Loader struct {
	source Source
	cache  DocumentCache
	onLoad func(origin string)
	logger zerolog.Logger
}

// Load origins reported to the observer.
const (
	OriginCache  = "cache"
	OriginSource = "source"
)

// NewLoader builds a loader. cache may be nil. Local files are always read fresh, so the cache only
// applies to remote sources.
func NewLoader(source Source, cache DocumentCache, logger zerolog.Logger) *Loader {
	if _, local := source.(FileSource); local {
		cache = nil
	}
	return &Loader{
		source: source,
		cache:  cache,
		logger: logger.With().Str("component", "content_loader").Logger(),
	}
}

// OnLoad registers a callback invoked with the origin of every successful load.
func (l *Loader) OnLoad(fn func(origin string)) *Loader {
	l.onLoad = fn
	return l
}

func (l *Loader) loaded(origin string) {
	if l.onLoad != nil {
		l.onLoad(origin)
	}
}

// Load returns a validated store. Any failure here leaves the game unplayable.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	name := l.source.Name()

	if l.cache != nil {
		cached, err := l.cache.Get(ctx, name)
		switch {
		case err != nil:
			l.logger.Warn().Err(err).Str("source", name).Msg("content cache read failed")
		case cached != nil:
			store, err := NewStore(*cached)
			if err == nil {
				l.logger.Info().Str("source", name).Msg("content loaded from cache")
				l.loaded(OriginCache)
				return store, nil
			}
			l.logger.Warn().Err(err).Str("source", name).Msg("cached content rejected, refetching")
		}
	}

	data, format, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch content from %s: %w", name, err)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("load content from %s: %w", name, err)
	}
	store, err := NewStore(doc)
	if err != nil {
		return nil, fmt.Errorf("load content from %s: %w", name, err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, name, doc); err != nil {
			l.logger.Warn().Err(err).Str("source", name).Msg("content cache write failed")
		}
	}

	summary := store.Summary()
	l.logger.Info().
		Str("source", name).
		Int("traits", len(summary.Traits)).
		Int("questions", summary.QuestionCount).
		Int("core_debrief", summary.CoreDebrief).
		Int("extra_debrief", summary.ExtraDebrief).
		Msg("content loaded")
	l.loaded(OriginSource)

	return store, nil
}
