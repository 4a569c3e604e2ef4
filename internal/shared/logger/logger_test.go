package logger

import (
	"testing"

	"github.com/peterldowns/testy/check"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	dev := newConfig("", "")
	check.True(t, dev.Development)
	check.Equal(t, "console", dev.Encoding)
	check.Equal(t, zapcore.DebugLevel, dev.Level.Level())

	prod := newConfig("production", "")
	check.False(t, prod.Development)
	check.Equal(t, "json", prod.Encoding)
	check.Equal(t, zapcore.InfoLevel, prod.Level.Level())

	check.Equal(t, zapcore.WarnLevel, newConfig("production", "warn").Level.Level())
	check.Equal(t, zapcore.DebugLevel, newConfig("", "loud").Level.Level())
}
