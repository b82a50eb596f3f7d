package hyperliquid

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"copy_bot/internal/copier"
	"copy_bot/internal/modules/config"
	"copy_bot/internal/modules/hyperliquid/service"
)

func Module() fx.Option {
	return fx.Module("hyperliquid",
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger) (*service.Client, error) {
				signer, err := service.NewSigner(cfg.SecretKey)
				if err != nil {
					return nil, err
				}

				account := cfg.AccountAddress
				if account == "" {
					account = signer.Address()
				}

				baseURL := service.MainnetAPIURL
				if cfg.Network == config.NetworkTestnet {
					baseURL = service.TestnetAPIURL
				}

				isMainnet := cfg.Network == config.NetworkMainnet
				return service.NewClient(baseURL, account, isMainnet, signer, log), nil
			},
		),

		// Адаптер: *service.Client → copier.Gateway
		fx.Provide(
			func(c *service.Client) copier.Gateway {
				return c
			},
		),

		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, cfg *config.Config, log *zap.Logger) {
			streamCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					// без equity на счёте торговать нечем — падаем сразу
					if err := c.VerifyEquity(ctx, c.Account()); err != nil {
						return err
					}
					log.Info("hyperliquid session verified",
						zap.String("account", c.Account()),
						zap.String("network", cfg.Network))

					if cfg.WSPrices {
						c.StartPriceStream(streamCtx)
					}
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					c.Close()
					return nil
				},
			})
		}),
	)
}
