// Package logger is the process-wide zap logger shared by the API server,
// the River workers and the seed command. Every entry carries
// service=soundstake; money amounts are logged as fixed two-decimal strings
// so log lines match ledger rows exactly.
//
// Import Path: soundstake.io/soundstake/internal/pkg/logger
package logger

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "soundstake"

var (
	// Until Init runs (library tests, early bootstrap) entries are dropped.
	global = zap.NewNop()
	once   sync.Once
)

// Init builds the global logger. level is a zap level name; format is
// "json" for deployments or "console" for local runs. Later calls are no-ops.
func Init(level, format string) error {
	var initErr error
	once.Do(func() {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			initErr = fmt.Errorf("parse log level %q: %w", level, err)
			return
		}

		cfg := zap.NewProductionConfig()
		if format == "console" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.InitialFields = map[string]interface{}{"service": serviceName}

		built, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			initErr = fmt.Errorf("build logger: %w", err)
			return
		}
		global = built
	})
	return initErr
}

// L returns the global logger.
func L() *zap.Logger { return global }

func Debug(msg string, fields ...zap.Field) { global.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { global.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { global.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { global.Error(msg, fields...) }

// Money logs an amount the way ledger entries store it.
func Money(key string, amount decimal.Decimal) zap.Field {
	return zap.String(key, amount.StringFixed(2))
}

// Sync flushes buffered entries; call it before the process exits.
func Sync() error {
	return global.Sync()
}
