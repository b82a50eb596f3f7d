package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatToWire(t *testing.T) {
	assert.Equal(t, "0.6", floatToWire(0.6))
	assert.Equal(t, "188", floatToWire(188.0))
	assert.Equal(t, "0.00001", floatToWire(0.00001))
	// хвостовые нули не уходят на провод
	assert.Equal(t, "1.5", floatToWire(1.50000))
}

func TestSlippagePrice(t *testing.T) {
	// покупка двигает цену вверх, продажа вниз
	assert.InDelta(t, 25250.0, slippagePrice(25000, true, 0.01, 5), 1e-9)
	assert.InDelta(t, 24750.0, slippagePrice(25000, false, 0.01, 5), 1e-9)

	// пять значащих цифр: 1234.56 * 1.01 = 1246.9056 → 1246.9
	assert.InDelta(t, 1246.9, slippagePrice(1234.56, true, 0.01, 1), 1e-9)

	// ограничение знаков из szDecimals: максимум 6-5=1 знак после запятой
	got := slippagePrice(0.123456, true, 0.05, 5)
	assert.InDelta(t, 0.1, got, 1e-9)
}
