package copier

import (
	"context"
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"copy_bot/internal/models"
	"copy_bot/internal/modules/config"
	healthsvc "copy_bot/internal/modules/health/service"
	"copy_bot/internal/notify"
	"copy_bot/internal/vaults"
)

// Пауза после каждого OPEN: даём бирже переварить ордер,
// прежде чем трогать следующую монету.
const settlePause = time.Second

// Runner — машина состояний INITIALIZING → POLLING → {STOPPED, FAILED}.
// Цикл строго последовательный: опрос vaults, реконсиляция, исполнение,
// обновление своего снапшота, сон. Ошибки отдельных вызовов деградируют
// до no-op в рамках цикла и не валят цикл.
type Runner struct {
	cfg    *config.Config
	gw     Gateway
	loader *vaults.Loader
	sizer  *Sizer
	n      notify.Notifier
	state  *healthsvc.State
	log    *zap.Logger
	out    io.Writer

	my      models.Snapshot
	tracked []string
}

func NewRunner(
	cfg *config.Config,
	gw Gateway,
	loader *vaults.Loader,
	sizer *Sizer,
	n notify.Notifier,
	state *healthsvc.State,
	log *zap.Logger,
	out io.Writer,
) *Runner {
	return &Runner{
		cfg:    cfg,
		gw:     gw,
		loader: loader,
		sizer:  sizer,
		n:      n,
		state:  state,
		log:    log,
		out:    out,
	}
}

// Init — состояние INITIALIZING: первый список vaults, первый свой снапшот,
// первая отрисовка. Проверку equity к этому моменту уже сделал модуль шлюза.
func (r *Runner) Init(ctx context.Context) error {
	r.log.Info("starting copy trading bot",
		zap.String("wallet", r.cfg.WalletAddress),
		zap.Float64("tradeAmountUSD", r.cfg.TradeAmountUSD),
		zap.Duration("refreshInterval", r.cfg.RefreshInterval))

	tracked, err := r.loader.Load()
	if err != nil {
		// стартуем и с пустым списком, файл можно дописать на ходу
		r.log.Error("failed to load vaults file", zap.Error(err))
		tracked = []string{}
	}
	r.tracked = tracked
	r.my = r.snapshot(ctx, r.cfg.WalletAddress)
	r.render()

	r.state.SetReady(true)
	return nil
}

// Run — состояние POLLING. Возврат nil — штатная остановка (STOPPED),
// возврат ошибки — паника, вырвавшаяся из тела цикла (FAILED).
func (r *Runner) Run(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Wrapf(models.ErrTrading, "panic in polling loop: %v", p)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("bot stopped by user")
			return nil
		default:
		}

		r.cycle(ctx)

		select {
		case <-ctx.Done():
			r.log.Info("bot stopped by user")
			return nil
		case <-time.After(r.cfg.RefreshInterval):
		}
	}
}

// cycle — одна итерация: reload vaults → снапшоты → план → OPEN'ы → CLOSE'ы
// → свой снапшот → таблица.
func (r *Runner) cycle(ctx context.Context) {
	span := opentracing.GlobalTracer().StartSpan("reconcile_cycle")
	defer span.Finish()

	cur, err := r.loader.Load()
	if err != nil {
		r.log.Error("failed to load vaults file", zap.Error(err))
		cur = []string{}
	}
	// агрегат пересобирается с нуля каждый цикл, так что при смене списка
	// достаточно лога и обновления tracked
	if vaults.Changed(r.tracked, cur) {
		r.log.Info("copy vaults list updated", zap.Strings("vaults", cur))
		r.tracked = cur
	}

	snaps := make([]models.Snapshot, 0, len(cur))
	for _, addr := range cur {
		snaps = append(snaps, r.snapshot(ctx, addr))
	}

	plan := BuildPlan(r.my, snaps)
	span.SetTag("vaults", len(cur))
	span.SetTag("opens", len(plan.Opens))
	span.SetTag("closes", len(plan.Closes))

	for _, open := range plan.Opens {
		if !r.execOpen(ctx, open) {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(settlePause):
		}
	}
	for _, cl := range plan.Closes {
		r.execClose(ctx, cl)
	}

	r.my = r.snapshot(ctx, r.cfg.WalletAddress)
	r.render()
	r.state.TouchCycle(time.Now())
}

// snapshot — снапшот позиций адреса; ошибка шлюза деградирует до пустого
// набора с логом, дальше реконсиляции сырая ошибка не уходит.
func (r *Runner) snapshot(ctx context.Context, address string) models.Snapshot {
	positions, err := r.gw.Positions(ctx, address)
	if err != nil {
		r.log.Error("failed to fetch positions",
			zap.String("address", address), zap.Error(err))
		return models.NewSnapshot(address, nil)
	}
	return models.NewSnapshot(address, positions)
}

// execOpen возвращает true, если ордер реально отправлялся на биржу —
// только после этого есть смысл в паузе на settle.
func (r *Runner) execOpen(ctx context.Context, a OpenAction) bool {
	r.log.Info("new position detected",
		zap.String("coin", a.Coin),
		zap.String("side", string(a.Side)),
		zap.Int("leverage", a.Leverage))

	size, ok := r.sizer.Size(ctx, r.cfg.TradeAmountUSD, a.Coin)
	if !ok {
		return false
	}

	fill, err := r.gw.MarketOpen(ctx, a.Coin, a.Side, size, r.cfg.SlippageTolerance)
	if err != nil {
		r.log.Error("failed to open position", zap.String("coin", a.Coin), zap.Error(err))
		r.n.Sendf("❗️ OPEN %s failed: %v", a.Coin, err)
		return true
	}
	r.log.Info("order filled",
		zap.Int64("oid", fill.OrderID),
		zap.Float64("size", fill.TotalSize),
		zap.Float64("avgPx", fill.AvgPrice))
	r.n.Sendf("📈 OPEN %s %s | size=%v @ $%v | %dx",
		a.Coin, a.Side, fill.TotalSize, fill.AvgPrice, a.Leverage)

	// плечо выставляем после ордера; провал — только warning, позицию не откатываем
	if err := r.gw.UpdateLeverage(ctx, a.Coin, a.Leverage); err != nil {
		r.log.Warn("could not set leverage",
			zap.String("coin", a.Coin), zap.Int("leverage", a.Leverage), zap.Error(err))
	} else {
		r.log.Info("leverage set", zap.String("coin", a.Coin), zap.Int("leverage", a.Leverage))
	}
	return true
}

func (r *Runner) execClose(ctx context.Context, a CloseAction) {
	r.log.Info("closing position", zap.String("coin", a.Coin))
	if err := r.gw.MarketClose(ctx, a.Coin, r.cfg.SlippageTolerance); err != nil {
		// позиция остаётся как есть и попадёт в CLOSE следующего цикла
		r.log.Error("failed to close position", zap.String("coin", a.Coin), zap.Error(err))
		r.n.Sendf("❗️ CLOSE %s failed: %v", a.Coin, err)
		return
	}
	r.n.Sendf("📉 CLOSE %s", a.Coin)
}
