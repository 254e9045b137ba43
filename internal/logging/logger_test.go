package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "synergy-debrief", "production", "warn")

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "app=synergy-debrief")
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "a", "production", "loud")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := ForSession(NewWithWriter(&buf, "a", "production", "debug"), "abc")

	ctx := IntoContext(context.Background(), logger)
	FromContext(ctx).Debug().Msg("from context")
	assert.Contains(t, buf.String(), "session_id=abc")

	assert.Equal(t, zerolog.Disabled, FromContext(nil).GetLevel())
	assert.NotPanics(t, func() { FromContext(nil).Info().Msg("nop") })
	assert.NotPanics(t, func() { FromContext(context.Background()).Info().Msg("nop") })
}
