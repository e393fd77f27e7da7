package logger

import (
	"fmt"

	"go.uber.org/zap"
)

func InitLogger(logLevel string) {
	cfg := zap.NewDevelopmentConfig()

	switch logLevel {
	case "debug":
		cfg.Level.SetLevel(zap.DebugLevel)
	case "info":
		cfg.Level.SetLevel(zap.InfoLevel)
	case "warn":
		cfg.Level.SetLevel(zap.WarnLevel)
	case "error":
		cfg.Level.SetLevel(zap.ErrorLevel)
	default:
		cfg.Level.SetLevel(zap.InfoLevel)
	}

	cfg.DisableStacktrace = logLevel != "debug"

	lgr, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("failed to build logger: %w", err))
	}

	zap.ReplaceGlobals(lgr)

	zap.L().Debug("logger initialized", zap.String("level", logLevel))
}
