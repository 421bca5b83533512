package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestEnableDebug(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	EnableDebug()

	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", got)
	}
}

func TestLoggerHonorsGlobalLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	defer zerolog.SetGlobalLevel(prev)

	log := Logger()

	if log.Debug().Enabled() {
		t.Errorf("Expected debug events to be filtered at error level")
	}
	if !log.Error().Enabled() {
		t.Errorf("Expected error events to pass at error level")
	}
}
