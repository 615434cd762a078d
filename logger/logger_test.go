package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestComponentLoggers(t *testing.T) {
	var buf bytes.Buffer
	Default = New(zerolog.New(&buf))
	defer func() { Default = nil }()

	ForWorker().Info().Msg("cycle finished")
	assert.Contains(t, buf.String(), `"component":"worker"`)
	assert.Contains(t, buf.String(), "cycle finished")

	buf.Reset()
	ForStore().WithFields(Fields{"url": "https://example.com/en/p/1"}).Debug().Msg("marked")
	assert.Contains(t, buf.String(), `"component":"store"`)
	assert.Contains(t, buf.String(), `"url":"https://example.com/en/p/1"`)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	Default = New(zerolog.New(&buf))
	defer func() { Default = nil }()

	LogError("main", errors.New("boom"), "failed to %s", "start")
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), "failed to start")
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, zerolog.WarnLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MONITOR_ENVIRONMENT", "production")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())

	t.Setenv("MONITOR_ENVIRONMENT", "development")
	assert.Equal(t, zerolog.DebugLevel, getLogLevel())
}
