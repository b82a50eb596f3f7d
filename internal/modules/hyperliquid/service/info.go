package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"copy_bot/internal/models"
)

// Positions отдаёт открытые позиции адреса. Ошибки транспорта/разбора
// возвращаются наверх как ErrPosition — вызывающий решает, как деградировать.
func (c *Client) Positions(ctx context.Context, address string) ([]models.Position, error) {
	var state clearinghouseState
	if err := c.post(ctx, "/info", infoRequest{Type: "clearinghouseState", User: address}, &state); err != nil {
		return nil, errors.Wrapf(models.ErrPosition, "clearinghouseState %s: %v", address, err)
	}

	positions := make([]models.Position, 0, len(state.AssetPositions))
	for _, ap := range state.AssetPositions {
		p := ap.Position
		szi, err := strconv.ParseFloat(p.Szi, 64)
		if err != nil || szi == 0 {
			continue
		}
		upnl, _ := strconv.ParseFloat(p.UnrealizedPnl, 64)
		value, _ := strconv.ParseFloat(p.PositionValue, 64)

		positions = append(positions, models.Position{
			Coin: p.Coin,
			Size: szi,
			Leverage: models.Leverage{
				Mode:  p.Leverage.Type,
				Value: p.Leverage.Value,
			},
			UnrealizedPnl: upnl,
			PositionValue: value,
		})
	}
	return positions, nil
}

// AllMids — текущие mid-цены всех перпов.
func (c *Client) AllMids(ctx context.Context) (map[string]float64, error) {
	var raw map[string]string
	if err := c.post(ctx, "/info", infoRequest{Type: "allMids"}, &raw); err != nil {
		return nil, errors.Wrapf(models.ErrPrice, "allMids: %v", err)
	}

	mids := make(map[string]float64, len(raw))
	for coin, s := range raw {
		if px, err := strconv.ParseFloat(s, 64); err == nil {
			mids[coin] = px
		}
	}
	return mids, nil
}

// MidPrice — mid-цена одной монеты: сперва ws-кеш (если включён и свежий),
// потом REST. Отсутствие котировки — ErrPrice.
func (c *Client) MidPrice(ctx context.Context, coin string) (float64, error) {
	if c.prices != nil {
		if px, ok := c.prices.Mid(coin); ok {
			return px, nil
		}
	}

	mids, err := c.AllMids(ctx)
	if err != nil {
		return 0, err
	}
	px, ok := mids[coin]
	if !ok {
		return 0, errors.Wrapf(models.ErrPrice, "no quote for %s", coin)
	}
	return px, nil
}

// VerifyEquity повторяет стартовую проверку: на счёте должно быть хоть что-то,
// иначе это почти наверняка API-кошелёк без HL_ACCOUNT_ADDRESS.
func (c *Client) VerifyEquity(ctx context.Context, address string) error {
	var perp clearinghouseState
	if err := c.post(ctx, "/info", infoRequest{Type: "clearinghouseState", User: address}, &perp); err != nil {
		return errors.Wrapf(models.ErrConnection, "clearinghouseState %s: %v", address, err)
	}
	accountValue, _ := strconv.ParseFloat(perp.MarginSummary.AccountValue, 64)

	var spot spotClearinghouseState
	if err := c.post(ctx, "/info", infoRequest{Type: "spotClearinghouseState", User: address}, &spot); err != nil {
		return errors.Wrapf(models.ErrConnection, "spotClearinghouseState %s: %v", address, err)
	}

	if accountValue == 0 && len(spot.Balances) == 0 {
		return errors.Wrap(models.ErrConnection, fmt.Sprintf(
			"account %s has no equity on %s; if this is your API wallet, set HL_ACCOUNT_ADDRESS to your actual account address",
			address, c.baseURL,
		))
	}
	return nil
}
