package logger

import (
	"os"
	"strings"
	"time"

	"github.com/auto-route/docker-gateway-sync/internal/config"
	"github.com/rs/zerolog"
)

func SetupLogger(cfg *config.LoggingConfig) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}
	if cfg.NoTimestamp {
		// An external log collection system adds its own timestamps.
		consoleWriter.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	levelStr := strings.ToLower(cfg.Level)
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	zerolog.TimeFieldFormat = time.RFC3339

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	logCtx := zerolog.New(consoleWriter).
		With().
		Str("service", "docker_gateway_sync").
		Str("host", hostname)
	if !cfg.NoTimestamp {
		logCtx = logCtx.Timestamp()
	}

	return logCtx.Logger()
}
