package copier

import (
	"context"
	"io"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"copy_bot/internal/modules/config"
	"copy_bot/internal/vaults"
)

func Module() fx.Option {
	return fx.Module("copier",
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger) *vaults.Loader {
				return vaults.NewLoader(cfg.VaultsFile, log)
			},
			func(gw Gateway, log *zap.Logger) *Sizer {
				return NewSizer(gw, log)
			},
			func() io.Writer { return os.Stdout },
			NewRunner,
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			sd fx.Shutdowner,
			r *Runner,
			log *zap.Logger,
		) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := r.Init(ctx); err != nil {
						return err
					}
					go func() {
						if err := r.Run(runCtx); err != nil {
							log.Error("fatal error in polling loop", zap.Error(err))
							_ = sd.Shutdown(fx.ExitCode(1))
						}
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
