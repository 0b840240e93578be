package dbg

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewDevLogger(level zapcore.Level) *zap.Logger {
	return build(zap.NewDevelopmentConfig(), level)
}

func NewProdLogger(level zapcore.Level) *zap.Logger {
	return build(zap.NewProductionConfig(), level)
}

func build(cfg zap.Config, level zapcore.Level) *zap.Logger {
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
