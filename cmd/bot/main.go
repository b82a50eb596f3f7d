package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"copy_bot/internal/copier"
	"copy_bot/internal/modules/config"
	"copy_bot/internal/modules/health"
	"copy_bot/internal/modules/hyperliquid"
	"copy_bot/internal/modules/telegram"
	"copy_bot/pkg/logger"
	"copy_bot/pkg/tracing"
)

const serviceName = "copy_bot"

func main() {
	app := fx.New(
		fx.Provide(
			func() (*zap.Logger, error) {
				return logger.New(serviceName)
			},
		),
		config.Module(),
		hyperliquid.Module(),
		telegram.Module(),
		health.Module(),
		copier.Module(),
		fx.Invoke(initTracing),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		// кривой конфиг / нет сессии с биржей — выходим с ненулевым кодом
		log.Fatal(err)
	}

	// SIGINT/SIGTERM — код 0; фатальная ошибка цикла приходит
	// через Shutdowner с кодом 1.
	sig := <-app.Wait()

	stopCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	_ = app.Stop(stopCtx)

	os.Exit(sig.ExitCode)
}

func initTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) error {
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		ServiceName: serviceName,
		Host:        cfg.JaegerHost,
		Port:        cfg.JaegerPort,
	}, log)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}
