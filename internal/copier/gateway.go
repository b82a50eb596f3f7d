package copier

import (
	"context"

	"copy_bot/internal/models"
)

// Gateway — всё, что циклу нужно от биржи. Реализация живёт в
// internal/modules/hyperliquid; сюда не протекают wire-типы,
// только models.* и обычные ошибки.
type Gateway interface {
	Positions(ctx context.Context, address string) ([]models.Position, error)
	MidPrice(ctx context.Context, coin string) (float64, error)
	MarketOpen(ctx context.Context, coin string, side models.Side, size, slippage float64) (*models.Fill, error)
	MarketClose(ctx context.Context, coin string, slippage float64) error
	UpdateLeverage(ctx context.Context, coin string, leverage int) error
}
