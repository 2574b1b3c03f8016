package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind: строка не соответствует ни одному виду предмета.
var ErrUnknownKind = errors.New("domain: unknown item kind")

// ItemKind: закрытый перечень видов предметов уровня. Всё поведение,
// зависящее от вида (столкновения, категория отрезков), решается
// switch-ем по нему.
type ItemKind uint8

const (
	KindUnknown ItemKind = iota
	KindDroid
	KindEnemy
	KindObstacle
	KindFlag
	KindBullet
)

// Маппинг для конвертации сцены -> Domain
var kindFromString = map[string]ItemKind{
	"droid":    KindDroid,
	"enemy":    KindEnemy,
	"obstacle": KindObstacle,
	"flag":     KindFlag,
	"bullet":   KindBullet,
}

// Маппинг для логов и категорий Domain -> String
var kindToString = map[ItemKind]string{
	KindDroid:    "droid",
	KindEnemy:    "enemy",
	KindObstacle: "obstacle",
	KindFlag:     "flag",
	KindBullet:   "bullet",
}

// ParseKind конвертирует строку сцены в ItemKind (без учёта регистра).
func ParseKind(s string) (ItemKind, error) {
	if k, ok := kindFromString[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// String реализует интерфейс Stringer.
func (k ItemKind) String() string {
	if s, ok := kindToString[k]; ok {
		return s
	}
	return "unknown"
}

// Category: категория отрезков-силуэтов предметов этого вида.
func (k ItemKind) Category() string { return k.String() }

// Blocks сообщает, мешает ли предмет движению другого тела.
func (k ItemKind) Blocks() bool {
	switch k {
	case KindDroid, KindEnemy, KindObstacle:
		return true
	case KindFlag, KindBullet:
		return false
	}
	return false
}

// Visible сообщает, отбрасывает ли предмет силуэт для зрения.
// Пули слишком малы и живут слишком мало.
func (k ItemKind) Visible() bool {
	return k != KindBullet && k != KindUnknown
}

// MarshalText нужен yaml/json, чтобы писать вид строкой.
func (k ItemKind) MarshalText() ([]byte, error) {
	if k == KindUnknown {
		return nil, ErrUnknownKind
	}
	return []byte(k.String()), nil
}

// UnmarshalText разбирает вид из строки.
func (k *ItemKind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
