package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition_Side(t *testing.T) {
	assert.Equal(t, SideLong, Position{Coin: "BTC", Size: 1.5}.Side())
	assert.Equal(t, SideShort, Position{Coin: "ETH", Size: -2.0}.Side())
}

func TestPosition_ReplicationLeverage(t *testing.T) {
	tests := []struct {
		name string
		lev  Leverage
		want int
	}{
		{"cross keeps value", Leverage{Mode: LeverageCross, Value: 20}, 20},
		{"isolated falls back to 1x", Leverage{Mode: LeverageIsolated, Value: 10}, 1},
		{"missing leverage falls back to 1x", Leverage{}, 1},
		{"cross with zero value falls back to 1x", Leverage{Mode: LeverageCross}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Position{Coin: "BTC", Size: 1, Leverage: tt.lev}
			assert.Equal(t, tt.want, p.ReplicationLeverage())
		})
	}
}

func TestNewSnapshot_DedupsFirstWins(t *testing.T) {
	s := NewSnapshot("0xme", []Position{
		{Coin: "BTC", Size: 1},
		{Coin: "ETH", Size: -2},
		{Coin: "BTC", Size: -99}, // дубль отбрасывается
	})

	require.Equal(t, 2, s.Len())
	p, ok := s.Get("BTC")
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Size)
}

func TestSnapshot_Lookup(t *testing.T) {
	s := NewSnapshot("0xme", []Position{{Coin: "BTC", Size: 1}})

	assert.True(t, s.Has("BTC"))
	assert.False(t, s.Has("ETH"))

	_, ok := s.Get("ETH")
	assert.False(t, ok)

	var empty Snapshot
	assert.False(t, empty.Has("BTC"))
}
