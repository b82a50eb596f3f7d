package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"
)

// AssetInfo — индекс перпа в universe и число знаков размера.
// Нужен для кодирования ордеров ("a" в payload) и нормализации цены.
type AssetInfo struct {
	Index      int
	SzDecimals int
}

// Client — шлюз к Hyperliquid: info-эндпоинты без подписи,
// exchange-эндпоинт с L1-подписью действий.
type Client struct {
	httpc     *http.Client
	baseURL   string
	isMainnet bool
	signer    *Signer
	account   string // адрес, от имени которого торгуем
	log       *zap.Logger

	assetsMu sync.RWMutex
	assets   map[string]AssetInfo

	prices *PriceCache // nil, если ws-поток цен выключен
}

func NewClient(baseURL, account string, isMainnet bool, signer *Signer, log *zap.Logger) *Client {
	return &Client{
		httpc:     &http.Client{Timeout: 10 * time.Second},
		baseURL:   baseURL,
		isMainnet: isMainnet,
		signer:    signer,
		account:   account,
		log:       log,
	}
}

// Account — адрес торгового аккаунта (учитывая HL_ACCOUNT_ADDRESS override).
func (c *Client) Account() string { return c.account }

// StartPriceStream включает вебсокетный кеш allMids: MidPrice будет брать
// свежую цену из кеша и ходить в REST только как fallback.
func (c *Client) StartPriceStream(ctx context.Context) {
	if c.prices != nil {
		return
	}
	c.prices = NewPriceCache(c.baseURL, c.log)
	c.prices.Start(ctx)
}

func (c *Client) Close() {
	if c.prices != nil {
		c.prices.Stop()
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(rb))
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(rb, out); err != nil {
		return errors.Wrapf(err, "decode response: %s", string(rb))
	}
	return nil
}

// asset возвращает метаданные перпа, лениво подгружая universe один раз.
func (c *Client) asset(ctx context.Context, coin string) (AssetInfo, error) {
	c.assetsMu.RLock()
	info, ok := c.assets[coin]
	c.assetsMu.RUnlock()
	if ok {
		return info, nil
	}

	if err := c.loadAssets(ctx); err != nil {
		return AssetInfo{}, err
	}

	c.assetsMu.RLock()
	defer c.assetsMu.RUnlock()
	info, ok = c.assets[coin]
	if !ok {
		return AssetInfo{}, errors.Errorf("unknown coin %q", coin)
	}
	return info, nil
}

func (c *Client) loadAssets(ctx context.Context) error {
	var meta metaResponse
	if err := c.post(ctx, "/info", infoRequest{Type: "meta"}, &meta); err != nil {
		return errors.Wrap(err, "fetch meta")
	}

	assets := make(map[string]AssetInfo, len(meta.Universe))
	for i, u := range meta.Universe {
		assets[u.Name] = AssetInfo{Index: i, SzDecimals: u.SzDecimals}
	}

	c.assetsMu.Lock()
	c.assets = assets
	c.assetsMu.Unlock()
	return nil
}
