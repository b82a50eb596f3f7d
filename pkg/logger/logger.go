package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New собирает основной логгер приложения. Никаких глобальных синглтонов:
// компоненты получают *zap.Logger через конструктор (fx).
func New(serviceName string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return log.With(zap.String("service", serviceName)), nil
}

// NewNop — заглушка для тестов.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
