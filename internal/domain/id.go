package domain

import (
	"fmt"
	"strconv"
)

// ItemID - упакованный идентификатор предмета (Kind + Level + Index)
type ItemID uint64

// Конфигурация битов
const (
	bitsIndex = 40
	bitsLevel = 16
	bitsKind  = 8

	// Сдвиги
	shiftLevel = bitsIndex
	shiftKind  = bitsIndex + bitsLevel

	// Маски (для извлечения значений)
	maskIndex = (1 << bitsIndex) - 1 // 0x000000FFFFFFFFFF
	maskLevel = (1 << bitsLevel) - 1 // 0xFFFF
	maskKind  = (1 << bitsKind) - 1  // 0xFF
)

// NilItemID: отсутствие предмета.
const NilItemID ItemID = 0

// PackItemID создает ID из компонентов
func PackItemID(kind ItemKind, level int16, index uint64) ItemID {
	id := index & maskIndex
	id |= (uint64(uint16(level)) & maskLevel) << shiftLevel
	id |= (uint64(kind) & maskKind) << shiftKind
	return ItemID(id)
}

func (id ItemID) Kind() ItemKind {
	return ItemKind((id >> shiftKind) & maskKind)
}

func (id ItemID) Level() int16 {
	return int16(uint16((id >> shiftLevel) & maskLevel))
}

func (id ItemID) Index() uint64 {
	return uint64(id & maskIndex)
}

// MarshalJSON сериализует ID в строку, так как JS теряет точность для больших int64
func (id ItemID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON парсит строку или число из JSON
func (id *ItemID) UnmarshalJSON(data []byte) error {
	// Удаляем кавычки, если есть
	if len(data) > 1 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	val, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = ItemID(val)
	return nil
}

// String для логов: [kind:lvl:idx]
func (id ItemID) String() string {
	return fmt.Sprintf("[%s:%d:%d]", id.Kind(), id.Level(), id.Index())
}
