package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("debug mode enables debug level", func(t *testing.T) {
		logger, err := NewLogger(true)
		if err != nil {
			t.Fatalf("NewLogger(true) error: %v", err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Error("debug logger should enable debug level")
		}
		_ = logger.Sync()
	})

	t.Run("production mode starts at info", func(t *testing.T) {
		logger, err := NewLogger(false)
		if err != nil {
			t.Fatalf("NewLogger(false) error: %v", err)
		}
		if logger.Core().Enabled(zapcore.DebugLevel) {
			t.Error("production logger should not enable debug level")
		}
		if !logger.Core().Enabled(zapcore.InfoLevel) {
			t.Error("production logger should enable info level")
		}
		_ = logger.Sync()
	})
}

func TestNewCLILogger(t *testing.T) {
	logger, err := NewCLILogger(false)
	if err != nil {
		t.Fatalf("NewCLILogger(false) error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("CLI logger should suppress info")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("CLI logger should enable warn")
	}
	_ = logger.Sync()
}
