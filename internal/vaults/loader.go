package vaults

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"copy_bot/internal/models"
)

// Loader читает список отслеживаемых адресов из текстового файла:
// один адрес на строку, пустые строки и строки с # пропускаем.
// Файл перечитывается каждый цикл — список можно править без рестарта.
type Loader struct {
	path string
	log  *zap.Logger
}

func NewLoader(path string, log *zap.Logger) *Loader {
	return &Loader{path: path, log: log}
}

// Load возвращает адреса в порядке строк файла.
// Отсутствующий файл создаём пустым — это не ошибка.
func (l *Loader) Load() ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Warn("vaults file not found, creating empty one", zap.String("path", l.path))
			if cerr := l.touch(); cerr != nil {
				return nil, errors.Wrapf(models.ErrVault, "create %s: %v", l.path, cerr)
			}
			return []string{}, nil
		}
		return nil, errors.Wrapf(models.ErrVault, "open %s: %v", l.path, err)
	}
	defer f.Close()

	var addrs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "0x") {
			l.log.Warn("skipping malformed vault address", zap.String("line", line))
			continue
		}
		addrs = append(addrs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(models.ErrVault, "read %s: %v", l.path, err)
	}
	if addrs == nil {
		addrs = []string{}
	}
	return addrs, nil
}

func (l *Loader) touch() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Changed — чувствительное к порядку сравнение двух списков:
// ["A","B"] и ["B","A"] считаются разными и сбрасывают агрегат.
func Changed(prev, cur []string) bool {
	if len(prev) != len(cur) {
		return true
	}
	for i := range prev {
		if prev[i] != cur[i] {
			return true
		}
	}
	return false
}
