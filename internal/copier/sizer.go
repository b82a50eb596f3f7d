package copier

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceSource — кусок Gateway, нужный сайзеру.
type PriceSource interface {
	MidPrice(ctx context.Context, coin string) (float64, error)
}

// Sizer переводит фиксированный нотионал в размер в монетах по текущей
// mid-цене. Точность размера зависит от цены (чем дороже монета, тем
// больше знаков), округление — half away from zero: 187.5 → 188.
type Sizer struct {
	prices PriceSource
	log    *zap.Logger
}

func NewSizer(prices PriceSource, log *zap.Logger) *Sizer {
	return &Sizer{prices: prices, log: log}
}

// Size возвращает (размер, ok). ok=false — цены нет либо размер после
// округления нулевой; такой OPEN просто пропускается, в следующем цикле
// условие сохранится и попытка повторится.
func (s *Sizer) Size(ctx context.Context, usdAmount float64, coin string) (float64, bool) {
	px, err := s.prices.MidPrice(ctx, coin)
	if err != nil {
		s.log.Warn("price not available", zap.String("coin", coin), zap.Error(err))
		return 0, false
	}
	// биржа может отдать котировку "0"; делить на неё нельзя
	if px <= 0 {
		s.log.Warn("price not available", zap.String("coin", coin), zap.Float64("price", px))
		return 0, false
	}

	size, _ := decimal.NewFromFloat(usdAmount).
		Div(decimal.NewFromFloat(px)).
		Round(sizeDecimals(px)).
		Float64()
	if size == 0 {
		s.log.Warn("size rounds to zero, skipping",
			zap.String("coin", coin), zap.Float64("price", px), zap.Float64("usd", usdAmount))
		return 0, false
	}
	return size, true
}

func sizeDecimals(price float64) int32 {
	switch {
	case price >= 10000:
		return 5
	case price >= 1000:
		return 2
	case price >= 100:
		return 1
	default:
		return 0
	}
}
