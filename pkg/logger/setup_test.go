package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/raywall/tablestore-toolkit/pkg/config"
)

func TestConfigure(t *testing.T) {
	t.Run("Default Level Info", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: true}
		_ = Configure(cfg)

		if zerolog.GlobalLevel() != zerolog.InfoLevel {
			t.Errorf("expected InfoLevel, got %v", zerolog.GlobalLevel())
		}
	})

	t.Run("Custom Level Debug", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: true, Level: "debug"}
		_ = Configure(cfg)

		if zerolog.GlobalLevel() != zerolog.DebugLevel {
			t.Errorf("expected DebugLevel, got %v", zerolog.GlobalLevel())
		}
	})

	t.Run("Disabled Logger", func(t *testing.T) {
		cfg := config.LoggingConf{Enabled: false}
		logger := Configure(cfg)

		// Writes go to io.Discard; this must not panic.
		logger.Info().Msg("probe")
	})
}
