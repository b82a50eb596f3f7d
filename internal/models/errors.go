package models

import "github.com/pkg/errors"

// Классы ошибок. Стартовые (конфиг, коннект) — фатальные,
// остальные гасятся внутри цикла: логируем и продолжаем.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnection    = errors.New("connection error")
	ErrPosition      = errors.New("position error")
	ErrPrice         = errors.New("price error")
	ErrTrading       = errors.New("trading error")
	ErrVault         = errors.New("vault error")
)
