package logger

import (
	"testing"

	"github.com/deppfellow/pickboard/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, 6, GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, 4, GetPgxTraceLogLevel(zerolog.InfoLevel))
	assert.Equal(t, 3, GetPgxTraceLogLevel(zerolog.WarnLevel))
	assert.Equal(t, 2, GetPgxTraceLogLevel(zerolog.ErrorLevel))
	assert.Equal(t, 1, GetPgxTraceLogLevel(zerolog.Disabled))
}

func TestLoggerServiceWithoutLicense(t *testing.T) {
	ls := NewLoggerService(config.DefaultObservabilityConfig())
	assert.Nil(t, ls.GetApplication())
	ls.Shutdown()

	var nilService *LoggerService
	assert.Nil(t, nilService.GetApplication())
}

func TestNewLoggerWithServiceLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	l := NewLoggerWithService(cfg, nil)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}
