package copier

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copy_bot/internal/models"
	"copy_bot/pkg/logger"
)

type stubPrices map[string]float64

func (s stubPrices) MidPrice(_ context.Context, coin string) (float64, error) {
	px, ok := s[coin]
	if !ok {
		return 0, errors.Wrapf(models.ErrPrice, "no quote for %s", coin)
	}
	return px, nil
}

func TestSizer_TierRounding(t *testing.T) {
	tests := []struct {
		name  string
		usd   float64
		coin  string
		price float64
		want  float64
	}{
		{"btc five decimals", 15000, "BTC", 25000, 0.6},
		{"doge rounds half up", 15, "DOGE", 0.08, 188}, // 187.5 → 188
		{"mid tier two decimals", 100, "ETH", 1500, 0.07},
		{"low tier one decimal", 100, "SOL", 150, 0.7},
		{"boundary 10000", 25000, "XXX", 10000, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSizer(stubPrices{tt.coin: tt.price}, logger.NewNop())
			got, ok := s.Size(context.Background(), tt.usd, tt.coin)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSizer_ZeroAfterRoundingIsUnavailable(t *testing.T) {
	// 15 / 5000 = 0.003 → round(…, 2) = 0 → сигнал "нет размера", не ошибка
	s := NewSizer(stubPrices{"ETH": 5000}, logger.NewNop())
	got, ok := s.Size(context.Background(), 15, "ETH")
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestSizer_ZeroQuoteIsUnavailable(t *testing.T) {
	// allMids может прислать "0" — это такое же "цены нет", а не деление на ноль
	s := NewSizer(stubPrices{"XRP": 0}, logger.NewNop())
	got, ok := s.Size(context.Background(), 15, "XRP")
	assert.False(t, ok)
	assert.Zero(t, got)

	s = NewSizer(stubPrices{"XRP": -1}, logger.NewNop())
	_, ok = s.Size(context.Background(), 15, "XRP")
	assert.False(t, ok)
}

func TestSizer_MissingPrice(t *testing.T) {
	s := NewSizer(stubPrices{}, logger.NewNop())
	_, ok := s.Size(context.Background(), 15, "NOPE")
	assert.False(t, ok)
}

func TestSizeDecimals(t *testing.T) {
	assert.Equal(t, int32(5), sizeDecimals(10000))
	assert.Equal(t, int32(2), sizeDecimals(9999.99))
	assert.Equal(t, int32(2), sizeDecimals(1000))
	assert.Equal(t, int32(1), sizeDecimals(999))
	assert.Equal(t, int32(1), sizeDecimals(100))
	assert.Equal(t, int32(0), sizeDecimals(99.99))
	assert.Equal(t, int32(0), sizeDecimals(0.08))
}
