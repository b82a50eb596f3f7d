package models

import "time"

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

const (
	LeverageCross    = "cross"
	LeverageIsolated = "isolated"
)

// Leverage — режим маржи и множитель, как их отдаёт биржа.
type Leverage struct {
	Mode  string
	Value int
}

// Position — открытая позиция по одной монете на одном аккаунте.
// Size со знаком: > 0 лонг, < 0 шорт. Нулевого размера у открытой позиции не бывает.
type Position struct {
	Coin          string
	Size          float64
	Leverage      Leverage
	UnrealizedPnl float64
	PositionValue float64
}

func (p Position) Side() Side {
	if p.Size > 0 {
		return SideLong
	}
	return SideShort
}

// ReplicationLeverage — правило подстановки плеча при копировании:
// всё, что не cross (isolated, нет плеча, нулевое значение), копируем с 1x.
func (p Position) ReplicationLeverage() int {
	if p.Leverage.Mode == LeverageCross && p.Leverage.Value > 0 {
		return p.Leverage.Value
	}
	return 1
}

// Snapshot — позиции одного адреса на момент опроса. После создания не мутируется,
// каждый цикл строит новый. Порядок Positions — порядок выдачи биржи.
type Snapshot struct {
	Owner       string
	Positions   []Position
	RetrievedAt time.Time

	byCoin map[string]int
}

// NewSnapshot строит снапшот, отбрасывая дубли по coin (первая запись выигрывает).
func NewSnapshot(owner string, positions []Position) Snapshot {
	s := Snapshot{
		Owner:       owner,
		RetrievedAt: time.Now(),
		byCoin:      make(map[string]int, len(positions)),
	}
	for _, p := range positions {
		if _, ok := s.byCoin[p.Coin]; ok {
			continue
		}
		s.byCoin[p.Coin] = len(s.Positions)
		s.Positions = append(s.Positions, p)
	}
	return s
}

func (s Snapshot) Has(coin string) bool {
	_, ok := s.byCoin[coin]
	return ok
}

func (s Snapshot) Get(coin string) (Position, bool) {
	i, ok := s.byCoin[coin]
	if !ok {
		return Position{}, false
	}
	return s.Positions[i], true
}

func (s Snapshot) Len() int { return len(s.Positions) }
