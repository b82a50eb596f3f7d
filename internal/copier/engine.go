package copier

import "copy_bot/internal/models"

// OpenAction — решение открыть позицию: нотионал у всех одинаковый
// (из конфига), поэтому хватает монеты, стороны и плеча.
type OpenAction struct {
	Coin     string
	Side     models.Side
	Leverage int
}

type CloseAction struct {
	Coin string
}

// Plan — результат одного прохода реконсиляции. Opens исполняются раньше
// Closes. Aggregate — объединение позиций всех vaults по правилу
// "первый увидел — тот и отслеживает" (без неттинга между vaults).
type Plan struct {
	Opens     []OpenAction
	Closes    []CloseAction
	Aggregate models.Snapshot
}

// BuildPlan — чистая функция: ни биржи, ни часов, ни состояния.
// Один и тот же вход даёт один и тот же план.
//
// Порядок обхода фиксирован: vaults в порядке файла, позиции в порядке
// выдачи биржи. OPEN проверяется против снапшота юсера ПЛЮС уже выданных
// в этом цикле OPEN'ов — монета, которую держат два vault'а, открывается
// один раз.
func BuildPlan(user models.Snapshot, vaultSnaps []models.Snapshot) Plan {
	var plan Plan

	seen := make(map[string]struct{})
	opened := make(map[string]struct{})
	var aggregate []models.Position

	for _, vs := range vaultSnaps {
		for _, p := range vs.Positions {
			if _, ok := seen[p.Coin]; ok {
				continue
			}
			seen[p.Coin] = struct{}{}
			aggregate = append(aggregate, p)
		}

		for _, p := range vs.Positions {
			if user.Has(p.Coin) {
				continue
			}
			if _, ok := opened[p.Coin]; ok {
				continue
			}
			opened[p.Coin] = struct{}{}
			plan.Opens = append(plan.Opens, OpenAction{
				Coin:     p.Coin,
				Side:     p.Side(),
				Leverage: p.ReplicationLeverage(),
			})
		}
	}

	plan.Aggregate = models.NewSnapshot("", aggregate)

	// позиции юзера, которые больше не держит ни один vault
	for _, p := range user.Positions {
		if !plan.Aggregate.Has(p.Coin) {
			plan.Closes = append(plan.Closes, CloseAction{Coin: p.Coin})
		}
	}

	return plan
}
