package copier

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copy_bot/internal/models"
	"copy_bot/internal/modules/config"
	healthsvc "copy_bot/internal/modules/health/service"
	"copy_bot/internal/notify"
	"copy_bot/internal/vaults"
	"copy_bot/pkg/logger"
)

// fakeGateway эмулирует биржу в памяти: открытия/закрытия сразу
// отражаются в positions моего адреса.
type fakeGateway struct {
	me        string
	positions map[string][]models.Position // address -> positions
	mids      map[string]float64

	opens   []OpenAction
	closes  []string
	levs    map[string]int
	openErr error
}

func newFakeGateway(me string) *fakeGateway {
	return &fakeGateway{
		me:        me,
		positions: make(map[string][]models.Position),
		mids:      make(map[string]float64),
		levs:      make(map[string]int),
	}
}

func (g *fakeGateway) Positions(_ context.Context, address string) ([]models.Position, error) {
	return g.positions[address], nil
}

func (g *fakeGateway) MidPrice(_ context.Context, coin string) (float64, error) {
	px, ok := g.mids[coin]
	if !ok {
		return 0, errors.Wrapf(models.ErrPrice, "no quote for %s", coin)
	}
	return px, nil
}

func (g *fakeGateway) MarketOpen(_ context.Context, coin string, side models.Side, size, _ float64) (*models.Fill, error) {
	if g.openErr != nil {
		return nil, g.openErr
	}
	signed := size
	if side == models.SideShort {
		signed = -size
	}
	g.positions[g.me] = append(g.positions[g.me], models.Position{
		Coin:     coin,
		Size:     signed,
		Leverage: models.Leverage{Mode: models.LeverageCross, Value: 1},
	})
	g.opens = append(g.opens, OpenAction{Coin: coin, Side: side})
	return &models.Fill{OrderID: int64(len(g.opens)), TotalSize: size, AvgPrice: g.mids[coin]}, nil
}

func (g *fakeGateway) MarketClose(_ context.Context, coin string, _ float64) error {
	kept := g.positions[g.me][:0]
	for _, p := range g.positions[g.me] {
		if p.Coin != coin {
			kept = append(kept, p)
		}
	}
	g.positions[g.me] = kept
	g.closes = append(g.closes, coin)
	return nil
}

func (g *fakeGateway) UpdateLeverage(_ context.Context, coin string, leverage int) error {
	g.levs[coin] = leverage
	return nil
}

func newTestRunner(t *testing.T, gw *fakeGateway, vaultAddrs []string) *Runner {
	t.Helper()

	path := filepath.Join(t.TempDir(), "copy_vaults.txt")
	var body []byte
	for _, a := range vaultAddrs {
		body = append(body, []byte(a+"\n")...)
	}
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg := &config.Config{
		WalletAddress:     gw.me,
		TradeAmountUSD:    15000,
		RefreshInterval:   time.Second,
		SlippageTolerance: 0.05,
		VaultsFile:        path,
	}
	log := logger.NewNop()
	return NewRunner(
		cfg,
		gw,
		vaults.NewLoader(path, log),
		NewSizer(gw, log),
		notify.Noop{},
		healthsvc.NewState(),
		log,
		io.Discard,
	)
}

func TestRunner_CycleOpensVaultPositionOnce(t *testing.T) {
	gw := newFakeGateway("0xme")
	gw.mids["BTC"] = 25000
	gw.positions["0xvault"] = []models.Position{{
		Coin:     "BTC",
		Size:     1.0,
		Leverage: models.Leverage{Mode: models.LeverageCross, Value: 5},
	}}

	r := newTestRunner(t, gw, []string{"0xvault"})
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))

	r.cycle(ctx)

	require.Len(t, gw.opens, 1)
	assert.Equal(t, "BTC", gw.opens[0].Coin)
	assert.Equal(t, models.SideLong, gw.opens[0].Side)
	assert.Equal(t, 5, gw.levs["BTC"])
	assert.True(t, r.my.Has("BTC"))

	// второй цикл с тем же vault — новых открытий нет
	r.cycle(ctx)
	assert.Len(t, gw.opens, 1)
	assert.Empty(t, gw.closes)
}

func TestRunner_CycleClosesUnbackedPosition(t *testing.T) {
	gw := newFakeGateway("0xme")
	gw.positions["0xme"] = []models.Position{{
		Coin:     "ETH",
		Size:     -2.0,
		Leverage: models.Leverage{Mode: models.LeverageCross, Value: 3},
	}}

	r := newTestRunner(t, gw, nil)
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))

	r.cycle(ctx)

	require.Equal(t, []string{"ETH"}, gw.closes)
	assert.False(t, r.my.Has("ETH"))
}

func TestRunner_MissingPriceSkipsOpenUntilNextCycle(t *testing.T) {
	gw := newFakeGateway("0xme")
	gw.positions["0xvault"] = []models.Position{{
		Coin:     "BTC",
		Size:     1.0,
		Leverage: models.Leverage{Mode: models.LeverageCross, Value: 5},
	}}

	r := newTestRunner(t, gw, []string{"0xvault"})
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))

	// цены нет — открытия нет, ошибок тоже
	r.cycle(ctx)
	assert.Empty(t, gw.opens)

	// цена появилась — позиция откроется на следующем цикле
	gw.mids["BTC"] = 25000
	r.cycle(ctx)
	require.Len(t, gw.opens, 1)
}

func TestRunner_SettlePauseOnlyAfterSentOrder(t *testing.T) {
	open := OpenAction{Coin: "BTC", Side: models.SideLong, Leverage: 5}
	ctx := context.Background()

	// цены нет — ордер не отправлялся, пауза не нужна
	gw := newFakeGateway("0xme")
	r := newTestRunner(t, gw, nil)
	assert.False(t, r.execOpen(ctx, open))
	assert.Empty(t, gw.opens)

	// ордер ушёл на биржу — пауза нужна
	gw.mids["BTC"] = 25000
	assert.True(t, r.execOpen(ctx, open))
	require.Len(t, gw.opens, 1)

	// ордер отправлялся, но биржа ответила ошибкой — биржу всё равно трогали
	gw.openErr = errors.Wrap(models.ErrTrading, "order has invalid size")
	assert.True(t, r.execOpen(ctx, open))
}

func TestRunner_VaultListChangeUpdatesTracked(t *testing.T) {
	gw := newFakeGateway("0xme")
	r := newTestRunner(t, gw, []string{"0xa", "0xb"})
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))
	r.cycle(ctx)

	// перестановка адресов — это изменение списка
	require.NoError(t, os.WriteFile(r.cfg.VaultsFile, []byte("0xb\n0xa\n"), 0o644))
	r.cycle(ctx)
	assert.Equal(t, []string{"0xb", "0xa"}, r.tracked)
}
