package service

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Перпы принимают цены максимум с шестью знаками после запятой
// и не больше пяти значащих цифр.
const maxPerpPriceDecimals = 6

// floatToWire приводит число к строковому формату биржи:
// до восьми знаков, без хвостовых нулей.
func floatToWire(x float64) string {
	return decimal.NewFromFloat(x).Round(8).String()
}

// slippagePrice сдвигает mid на долю slippage в сторону исполнения
// и нормализует результат под ценовые правила биржи.
func slippagePrice(mid float64, isBuy bool, slippage float64, szDecimals int) float64 {
	px := mid * (1 - slippage)
	if isBuy {
		px = mid * (1 + slippage)
	}

	// сначала 5 значащих цифр, потом ограничение по знакам
	sig, err := strconv.ParseFloat(strconv.FormatFloat(px, 'g', 5, 64), 64)
	if err != nil {
		sig = px
	}
	rounded, _ := decimal.NewFromFloat(sig).
		Round(int32(maxPerpPriceDecimals - szDecimals)).
		Float64()
	return rounded
}
