package service

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"copy_bot/internal/models"
)

const orderGroupingNA = "na"

// MarketOpen открывает позицию IOC-лимиткой по mid-цене со сдвигом на slippage.
// Любой error-статус в ответе — провал всего действия; resting с Ioc не бывает,
// но на всякий случай тоже считается незаполненным.
func (c *Client) MarketOpen(ctx context.Context, coin string, side models.Side, size, slippage float64) (*models.Fill, error) {
	asset, err := c.asset(ctx, coin)
	if err != nil {
		return nil, errors.Wrapf(models.ErrTrading, "open %s: %v", coin, err)
	}
	mid, err := c.MidPrice(ctx, coin)
	if err != nil {
		return nil, err
	}

	isBuy := side == models.SideLong
	px := slippagePrice(mid, isBuy, slippage, asset.SzDecimals)

	return c.placeOrder(ctx, orderWire{
		Asset:      asset.Index,
		IsBuy:      isBuy,
		Price:      floatToWire(px),
		Size:       floatToWire(size),
		ReduceOnly: false,
		Type:       orderTypeWire{Limit: &limitOrderWire{Tif: "Ioc"}},
	})
}

// MarketClose закрывает текущую позицию по монете reduce-only ордером
// противоположной стороны на полный размер.
func (c *Client) MarketClose(ctx context.Context, coin string, slippage float64) error {
	positions, err := c.Positions(ctx, c.account)
	if err != nil {
		return err
	}

	var pos *models.Position
	for i := range positions {
		if positions[i].Coin == coin {
			pos = &positions[i]
			break
		}
	}
	if pos == nil {
		return errors.Wrapf(models.ErrTrading, "close %s: no open position", coin)
	}

	asset, err := c.asset(ctx, coin)
	if err != nil {
		return errors.Wrapf(models.ErrTrading, "close %s: %v", coin, err)
	}
	mid, err := c.MidPrice(ctx, coin)
	if err != nil {
		return err
	}

	isBuy := pos.Size < 0 // шорт закрываем покупкой
	px := slippagePrice(mid, isBuy, slippage, asset.SzDecimals)

	_, err = c.placeOrder(ctx, orderWire{
		Asset:      asset.Index,
		IsBuy:      isBuy,
		Price:      floatToWire(px),
		Size:       floatToWire(math.Abs(pos.Size)),
		ReduceOnly: true,
		Type:       orderTypeWire{Limit: &limitOrderWire{Tif: "Ioc"}},
	})
	return err
}

// UpdateLeverage выставляет cross-плечо. Провал здесь — warning у вызывающего,
// уже открытую позицию никто не откатывает.
func (c *Client) UpdateLeverage(ctx context.Context, coin string, leverage int) error {
	asset, err := c.asset(ctx, coin)
	if err != nil {
		return errors.Wrapf(models.ErrTrading, "leverage %s: %v", coin, err)
	}

	action := updateLeverageAction{
		Type:     "updateLeverage",
		Asset:    asset.Index,
		IsCross:  true,
		Leverage: leverage,
	}

	var resp exchangeResponse
	if err := c.execute(ctx, action, &resp); err != nil {
		return errors.Wrapf(models.ErrTrading, "leverage %s: %v", coin, err)
	}
	if resp.Status != "ok" {
		return errors.Wrapf(models.ErrTrading, "leverage %s: %s", coin, string(resp.Response))
	}
	return nil
}

func (c *Client) placeOrder(ctx context.Context, w orderWire) (*models.Fill, error) {
	action := orderAction{
		Type:     "order",
		Orders:   []orderWire{w},
		Grouping: orderGroupingNA,
	}

	var resp exchangeResponse
	if err := c.execute(ctx, action, &resp); err != nil {
		return nil, errors.Wrapf(models.ErrTrading, "place order: %v", err)
	}
	if resp.Status != "ok" {
		return nil, errors.Wrapf(models.ErrTrading, "order rejected: %s", string(resp.Response))
	}

	var data orderResponseData
	if err := sonic.Unmarshal(resp.Response, &data); err != nil {
		return nil, errors.Wrapf(models.ErrTrading, "decode order response: %v", err)
	}

	var fill *models.Fill
	for _, st := range data.Data.Statuses {
		switch {
		case st.Error != "":
			return nil, errors.Wrapf(models.ErrTrading, "order error: %s", st.Error)
		case st.Filled != nil:
			totalSz, _ := strconv.ParseFloat(st.Filled.TotalSz, 64)
			avgPx, _ := strconv.ParseFloat(st.Filled.AvgPx, 64)
			fill = &models.Fill{
				OrderID:   st.Filled.Oid,
				TotalSize: totalSz,
				AvgPrice:  avgPx,
			}
		case st.Resting != nil:
			c.log.Warn("ioc order reported as resting", zap.Int64("oid", st.Resting.Oid))
		}
	}
	if fill == nil {
		return nil, errors.Wrap(models.ErrTrading, "order not filled")
	}
	return fill, nil
}

func (c *Client) execute(ctx context.Context, action any, out *exchangeResponse) error {
	nonce := uint64(time.Now().UnixMilli())
	sig, err := c.signer.SignL1Action(action, nonce, c.isMainnet)
	if err != nil {
		return errors.Wrap(err, "sign action")
	}

	req := exchangeRequest{
		Action:       action,
		Nonce:        nonce,
		Signature:    sig,
		VaultAddress: nil,
	}
	return c.post(ctx, "/exchange", req, out)
}
