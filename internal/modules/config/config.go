package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"copy_bot/internal/models"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

// Config — все настройки бота. Источник — переменные окружения,
// опционально поверх локального .env файла (как у python-ботов).
type Config struct {
	// Торговля
	WalletAddress     string  // MY_WALLET_ADDRESS — адрес, чьи позиции реплицируем и где торгуем
	TradeAmountUSD    float64 // TRADE_AMOUNT_USD — фиксированный нотионал на каждую новую позицию
	RefreshInterval   time.Duration
	SlippageTolerance float64
	VaultsFile        string

	// Hyperliquid
	SecretKey      string // HL_SECRET_KEY — ключ подписи
	AccountAddress string // HL_ACCOUNT_ADDRESS — override для API-кошельков
	Network        string // mainnet / testnet

	// Необязательное окружение
	TelegramToken  string
	TelegramChatID int64
	JaegerHost     string
	JaegerPort     int
	HealthAddr     string
	WSPrices       bool // подписка на allMids по вебсокету вместо опроса REST
}

func NewConfig() (*Config, error) {
	v := viper.New()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// .env опционален, всё можно задать окружением
	if _, err := os.Stat(envFile); err == nil {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(models.ErrConfiguration, "parse %s: %v", envFile, err)
		}
	}
	v.AutomaticEnv()

	v.SetDefault("TRADE_AMOUNT_USD", 15.0)
	v.SetDefault("REFRESH_INTERVAL_SECONDS", 3)
	v.SetDefault("SLIPPAGE_TOLERANCE", 0.1)
	v.SetDefault("VAULTS_FILE", "copy_vaults.txt")
	v.SetDefault("HL_NETWORK", NetworkMainnet)
	v.SetDefault("JAEGER_PORT", 6831)
	v.SetDefault("HEALTH_ADDR", "")
	v.SetDefault("WS_PRICES", false)

	cfg := &Config{
		WalletAddress:     v.GetString("MY_WALLET_ADDRESS"),
		TradeAmountUSD:    v.GetFloat64("TRADE_AMOUNT_USD"),
		RefreshInterval:   time.Duration(v.GetInt("REFRESH_INTERVAL_SECONDS")) * time.Second,
		SlippageTolerance: v.GetFloat64("SLIPPAGE_TOLERANCE"),
		VaultsFile:        v.GetString("VAULTS_FILE"),
		SecretKey:         v.GetString("HL_SECRET_KEY"),
		AccountAddress:    v.GetString("HL_ACCOUNT_ADDRESS"),
		Network:           strings.ToLower(v.GetString("HL_NETWORK")),
		TelegramToken:     v.GetString("TELEGRAM_TOKEN"),
		TelegramChatID:    v.GetInt64("TELEGRAM_CHAT_ID"),
		JaegerHost:        v.GetString("JAEGER_HOST"),
		JaegerPort:        v.GetInt("JAEGER_PORT"),
		HealthAddr:        v.GetString("HEALTH_ADDR"),
		WSPrices:          v.GetBool("WS_PRICES"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		return errors.Wrap(models.ErrConfiguration, "HL_SECRET_KEY not set")
	}
	if !strings.HasPrefix(c.SecretKey, "0x") {
		return errors.Wrap(models.ErrConfiguration, "invalid HL_SECRET_KEY format")
	}
	if c.WalletAddress == "" {
		return errors.Wrap(models.ErrConfiguration, "MY_WALLET_ADDRESS not set")
	}
	if !strings.HasPrefix(c.WalletAddress, "0x") {
		return errors.Wrap(models.ErrConfiguration, "invalid MY_WALLET_ADDRESS format")
	}
	if c.AccountAddress != "" && !strings.HasPrefix(c.AccountAddress, "0x") {
		return errors.Wrap(models.ErrConfiguration, "invalid HL_ACCOUNT_ADDRESS format")
	}
	if c.TradeAmountUSD <= 0 {
		return errors.Wrap(models.ErrConfiguration, "TRADE_AMOUNT_USD must be positive")
	}
	if c.RefreshInterval < time.Second {
		return errors.Wrap(models.ErrConfiguration, "REFRESH_INTERVAL_SECONDS must be at least 1")
	}
	if c.SlippageTolerance <= 0 || c.SlippageTolerance > 1 {
		return errors.Wrap(models.ErrConfiguration, "SLIPPAGE_TOLERANCE must be in (0, 1]")
	}
	if c.Network != NetworkMainnet && c.Network != NetworkTestnet {
		return errors.Wrapf(models.ErrConfiguration, "HL_NETWORK must be %q or %q", NetworkMainnet, NetworkTestnet)
	}
	return nil
}
