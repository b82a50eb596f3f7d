package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Сколько живёт запись в кеше: протухшие цены не отдаём,
// пусть вызывающий сходит в REST.
const priceTTL = 10 * time.Second

// PriceCache держит mid-цены из ws-подписки allMids.
// Читающая сторона — только Mid(); поток пишет под мьютексом.
type PriceCache struct {
	url string
	log *zap.Logger

	mu      sync.RWMutex
	mids    map[string]float64
	updated time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type wsSubscribe struct {
	Method       string `json:"method"`
	Subscription struct {
		Type string `json:"type"`
	} `json:"subscription"`
}

type wsMessage struct {
	Channel string `json:"channel"`
	Data    struct {
		Mids map[string]string `json:"mids"`
	} `json:"data"`
}

func NewPriceCache(baseURL string, log *zap.Logger) *PriceCache {
	return &PriceCache{
		url:  strings.Replace(baseURL, "https://", "wss://", 1) + "/ws",
		log:  log,
		mids: make(map[string]float64),
	}
}

func (p *PriceCache) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx)
	}()
}

func (p *PriceCache) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Mid отдаёт цену из кеша, если она свежее priceTTL.
func (p *PriceCache) Mid(coin string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if time.Since(p.updated) > priceTTL {
		return 0, false
	}
	px, ok := p.mids[coin]
	return px, ok
}

func (p *PriceCache) run(ctx context.Context) {
	retry := 0
	for {
		if ctx.Err() != nil {
			return
		}
		if err := p.connectAndRead(ctx); err != nil {
			retry++
			p.log.Warn("price stream dropped, reconnecting",
				zap.Error(err), zap.Int("attempt", retry))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(300*min(retry, 10)) * time.Millisecond):
		}
	}
}

func (p *PriceCache) connectAndRead(ctx context.Context) error {
	dialer := &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := wsSubscribe{Method: "subscribe"}
	sub.Subscription.Type = "allMids"
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-stopPing:
				return
			case <-ctx.Done():
				_ = conn.Close() // будит ReadMessage
				return
			case <-t.C:
				_ = conn.WriteJSON(map[string]string{"method": "ping"})
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var msg wsMessage
		if err := sonic.Unmarshal(raw, &msg); err != nil || msg.Channel != "allMids" {
			continue
		}

		p.mu.Lock()
		for coin, s := range msg.Data.Mids {
			if px, err := strconv.ParseFloat(s, 64); err == nil {
				p.mids[coin] = px
			}
		}
		p.updated = time.Now()
		p.mu.Unlock()
	}
}
